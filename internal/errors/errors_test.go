package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	withDetails := MissingColumnsError([]string{"Nombre", "Correo"})
	assert.Equal(t, http.StatusUnprocessableEntity, withDetails.StatusCode)
	assert.Equal(t, []string{"Nombre", "Correo"}, withDetails.Details)
}

func TestProblemDetailsMarshalsExtensions(t *testing.T) {
	problem := NewMissingColumnsProblem([]string{"col a", "col b"}, "/api/surveys")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeMissingColumns, decoded["type"])
	assert.Equal(t, float64(http.StatusUnprocessableEntity), decoded["status"])
	assert.Equal(t, []any{"col a", "col b"}, decoded["available_columns"])
}

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestHandleErrorAPIError(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/surveys/abc/report", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, UploadNotFoundError("abc"))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeUploadNotFound, problem["type"])
	assert.Equal(t, "UPLOAD_NOT_FOUND", problem["error_code"])
	assert.Equal(t, "abc", problem["details"])
}

func TestHandleErrorMissingColumns(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/surveys", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, MissingColumnsError([]string{"Nombre"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeMissingColumns, problem["type"])
	assert.Equal(t, []any{"Nombre"}, problem["available_columns"])
	assert.Equal(t, "No se detectaron columnas de Programa y AñoEgreso en el archivo.", problem["detail"])
}

func TestHandleErrorGenericFallback(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeInternal, problem["type"])
}

func TestErrorMiddlewareLogsRejectedRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/surveys/abc/conclusions",
		strings.NewReader(`{"text":`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "request rejected")
	assert.Contains(t, buf.String(), "request_body")

	// Successful requests are left to the request logger
	buf.Reset()
	ok := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotContains(t, buf.String(), "request rejected")
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := mw.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/surveys", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeInternal, problem["type"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	h.NotFound(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/surveys", nil)
	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
