package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable FromEnv reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BACKEND_URL", "FASTAPI_BACKEND_URL", "BACKEND_TIMEOUT", "PORT",
		"MAX_UPLOAD_BYTES", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"backend_url": "http://analysis:8000",
		"backend_timeout": "90s",
		"port": 9090,
		"log_format": "console"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://analysis:8000", cfg.BackendURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfig_TimeoutAsSeconds(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"backend_timeout": 120}`), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Timeout())
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"backend_timeout": "soon"}`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Default()},
		{name: "empty", cfg: Config{}},
		{name: "relative backend url", cfg: Config{BackendURL: "localhost:8000"}, wantErr: "backend_url"},
		{name: "ftp backend url", cfg: Config{BackendURL: "ftp://host"}, wantErr: "scheme"},
		{name: "port too large", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "negative timeout", cfg: Config{BackendTimeout: Duration(-time.Second)}, wantErr: "backend_timeout"},
		{name: "negative upload limit", cfg: Config{MaxUploadBytes: -1}, wantErr: "max_upload_bytes"},
		{name: "unknown log format", cfg: Config{LogFormat: "xml"}, wantErr: "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		BackendURL: "http://analysis:8000/",
		Port:       9000,
	}

	merged := partial.MergeWithDefaults(Default())

	// Custom values should be preserved, trailing slash dropped
	assert.Equal(t, "http://analysis:8000", merged.BackendURL)
	assert.Equal(t, 9000, merged.Port)

	// Default values should fill in empty fields
	assert.Equal(t, DefaultBackendTimeout, merged.Timeout())
	assert.Equal(t, int64(DefaultMaxUploadBytes), merged.MaxUploadBytes)
	assert.Equal(t, DefaultLogLevel, merged.LogLevel)
	assert.Empty(t, merged.DatabaseURL)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FASTAPI_BACKEND_URL", "http://legacy:8000")
	t.Setenv("BACKEND_TIMEOUT", "45s")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("DATABASE_URL", "postgres://localhost/analyzer")

	cfg := FromEnv()

	assert.Equal(t, "http://legacy:8000", cfg.BackendURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout())
	assert.Zero(t, cfg.Port, "unparsable values are left unset")
	assert.Equal(t, "postgres://localhost/analyzer", cfg.DatabaseURL)

	t.Setenv("BACKEND_URL", "http://primary:8000")
	assert.Equal(t, "http://primary:8000", FromEnv().BackendURL)
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"backend_url": "http://file:8000", "port": 9100}`), 0644))
	t.Setenv("BACKEND_URL", "http://env:8000")

	cfg, err := Resolve(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "http://env:8000", cfg.BackendURL)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, DefaultBackendTimeout, cfg.Timeout())
}

func TestResolve_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestResolve_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "yaml")

	_, err := Resolve("")
	assert.Error(t, err)
}
