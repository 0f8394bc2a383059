package http

import (
	"io/fs"
	"net/http"
)

// ServeIndex serves the report viewer page from the embedded web assets.
func ServeIndex(assets fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			http.Error(w, "viewer page not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	}
}

// StaticFiles serves the remaining embedded web assets under /static/.
func StaticFiles(assets fs.FS) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(assets)))
}
