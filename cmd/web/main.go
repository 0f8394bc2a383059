package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"alumnipulse/internal/app"
)

// Embedded web UI files
//go:embed all:web
var webFiles embed.FS

func main() {
	var assets fs.FS
	if sub, err := fs.Sub(webFiles, "web"); err == nil {
		assets = sub
	} else {
		slog.Warn("Web UI embedding failed, serving API only", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(assets)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
