package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, 10, cfg.Report.TopKCategories)
	assert.Equal(t, int64(20<<20), cfg.Report.MaxUploadBytes)
	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "negative top k",
			mutate:  func(c *Config) { c.Report.TopKCategories = -1 },
			wantErr: "top_k_categories",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Report.MaxUploadBytes = 0 },
			wantErr: "max_upload_bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090
	fileCfg.Report.TopKCategories = 5
	fileCfg.Paths.QuestionsFile = "custom.json"

	var envCfg Config // zero values simulate unset env
	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 9090, merged.Server.Port)
	assert.Equal(t, 5, merged.Report.TopKCategories)
	assert.Equal(t, "custom.json", merged.Paths.QuestionsFile)

	// Env values win over file values
	envCfg.Server.Port = 3000
	merged = mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 3000, merged.Server.Port)
}

func TestPathsWithBase(t *testing.T) {
	base := t.TempDir()
	paths := GetPathsWithBase(base)

	assert.Equal(t, base, paths.ExecutableDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "data", "cache"), paths.CacheDir)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.CacheDir)

	assert.Equal(t, filepath.Join(base, "data", "reports", "informe.csv"),
		paths.GetReportPath("informe.csv"))
}

func TestPathsApplyOverrides(t *testing.T) {
	paths := GetPathsWithBase("/opt/app")
	paths.ApplyOverrides(PathsConfig{
		DataDir:       "/var/lib/alumni",
		QuestionsFile: "/etc/alumni/questions.json",
	})

	assert.Equal(t, "/var/lib/alumni", paths.DataDir)
	assert.Equal(t, filepath.Join("/var/lib/alumni", "reports"), paths.ReportsDir)
	assert.Equal(t, "/etc/alumni/questions.json", paths.QuestionsFile)
	// WebDir untouched by a data override
	assert.Equal(t, filepath.Join("/opt/app", "web"), paths.WebDir)
}
