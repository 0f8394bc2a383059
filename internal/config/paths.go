package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds all file system paths used by the application.
// All paths are resolved relative to the executable location so the
// application remains portable as a single directory.
type Paths struct {
	// Base paths
	ExecutableDir string // Directory containing the executable
	DataDir       string // Base data directory

	// Data directories
	ReportsDir string // Generated report exports
	CacheDir   string // Cached uploads and intermediate artifacts
	LogsDir    string // Application logs

	// Static assets
	WebDir string // Web assets directory

	// Specific files
	QuestionsFile string // Question-set definition (JSON)
}

// GetPaths returns the application paths based on the executable location
func GetPaths() (*Paths, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	execDir := filepath.Dir(execPath)

	// Running under a temp build dir means a dev invocation; use the
	// working directory so data lands next to the sources.
	if strings.Contains(execDir, os.TempDir()) {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			execDir = wd
		}
	}

	return newPaths(execDir), nil
}

// GetPathsWithBase returns paths rooted at an explicit base directory.
// Used by tests and by the CLI when an output directory flag is given.
func GetPathsWithBase(baseDir string) *Paths {
	return newPaths(baseDir)
}

func newPaths(execDir string) *Paths {
	dataDir := filepath.Join(execDir, "data")

	return &Paths{
		ExecutableDir: execDir,
		DataDir:       dataDir,
		ReportsDir:    filepath.Join(dataDir, "reports"),
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(execDir, "logs"),
		WebDir:        filepath.Join(execDir, "web"),
		QuestionsFile: filepath.Join(execDir, "configs", "questions.json"),
	}
}

// ApplyOverrides replaces resolved paths with non-empty configured values.
func (p *Paths) ApplyOverrides(cfg PathsConfig) {
	if cfg.DataDir != "" {
		p.DataDir = cfg.DataDir
		p.ReportsDir = filepath.Join(cfg.DataDir, "reports")
		p.CacheDir = filepath.Join(cfg.DataDir, "cache")
	}
	if cfg.ReportsDir != "" {
		p.ReportsDir = cfg.ReportsDir
	}
	if cfg.LogsDir != "" {
		p.LogsDir = cfg.LogsDir
	}
	if cfg.WebDir != "" {
		p.WebDir = cfg.WebDir
	}
	if cfg.QuestionsFile != "" {
		p.QuestionsFile = cfg.QuestionsFile
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.ReportsDir,
		p.CacheDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetReportPath returns the full path for a named report export
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(ctx context.Context, logger *slog.Logger) {
	if logger == nil {
		return
	}

	logger.InfoContext(ctx, "resolved application paths",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("cache_dir", p.CacheDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("web_dir", p.WebDir),
		slog.String("questions_file", p.QuestionsFile),
	)
}
