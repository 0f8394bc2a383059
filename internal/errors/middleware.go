package errors

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// maxLoggedBody bounds how much of a failed request's body is kept for the log.
const maxLoggedBody = 500

// ErrorMiddleware records failed requests and recovers panics into RFC 7807
// responses. Successful requests are already logged by the request logger, so
// only 4xx/5xx outcomes are written here, with a bounded body excerpt to make
// malformed conclusions payloads diagnosable.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Keep a copy of small bodies so a rejected request can be logged
		// with what the client actually sent. Survey uploads are multipart
		// and far larger than this cap, so they pass through untouched.
		var requestBody []byte
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength <= maxLoggedBody {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		start := time.Now()

		defer func() {
			if err := recover(); err != nil {
				m.handler.HandlePanic(ww, r, err)
			}
		}()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status < 400 {
			return
		}

		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if len(requestBody) > 0 {
			attrs = append(attrs, slog.String("request_body", string(requestBody)))
		}

		m.logger.LogAttrs(r.Context(), level, "request rejected", attrs...)
	})
}
