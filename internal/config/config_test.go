package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "latin-events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "public", cfg.PublicDir)
	assert.Equal(t, 90, cfg.DaySpan)
	assert.Equal(t, 1.0, cfg.SimilarityThreshold)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "Mozilla/5.0 (Android 14; Pixel 8)", cfg.HTTP.UserAgent)
	assert.Equal(t, "https://www.latino.ch", cfg.Latino.BaseURL)
	assert.Equal(t, 2, cfg.Latino.MaxIdlePages)
	assert.Equal(t, 100, cfg.BachataBern.PerPage)
	assert.True(t, cfg.Latino.Enabled)
	assert.True(t, cfg.BachataBern.Enabled)
	assert.True(t, cfg.Calendar)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/latin/data
day_span: 30
similarity_threshold: 0.9
http:
  timeout: 10s
  max_retries: 4
latino:
  max_pages: 5
bachata_bern:
  enabled: false
serve:
  addr: ":9090"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/srv/latin/data", cfg.DataDir)
	assert.Equal(t, "public", cfg.PublicDir, "unset keys keep their defaults")
	assert.Equal(t, 30, cfg.DaySpan)
	assert.Equal(t, 0.9, cfg.SimilarityThreshold)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 4, cfg.HTTP.MaxRetries)
	assert.Equal(t, 5, cfg.Latino.MaxPages)
	assert.Equal(t, "https://www.latino.ch", cfg.Latino.BaseURL)
	assert.False(t, cfg.BachataBern.Enabled)
	assert.Equal(t, ":9090", cfg.Serve.Addr)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "day_span: 30\nlog:\n  level: warn\n")
	t.Setenv("LATIN_EVENTS_DAY_SPAN", "60")
	t.Setenv("LATIN_EVENTS_HTTP_USER_AGENT", "test-agent")
	t.Setenv("LATIN_EVENTS_LATINO_BASE_URL", "http://localhost:8081")
	t.Setenv("LATIN_EVENTS_STRICT", "true")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 60, cfg.DaySpan)
	assert.Equal(t, "test-agent", cfg.HTTP.UserAgent)
	assert.Equal(t, "http://localhost:8081", cfg.Latino.BaseURL)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "day_span: [1, 2"},
		{"negative day span", "day_span: -1"},
		{"threshold out of range", "similarity_threshold: 1.5"},
		{"unknown timezone", "timezone: Mars/Olympus"},
		{"no sources", "latino:\n  enabled: false\nbachata_bern:\n  enabled: false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.DaySpan = 0
	cfg.DataDir = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "day_span")
	assert.Contains(t, err.Error(), "data_dir")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/latin-events")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "latin-events"), got)

	got, err = ExpandHome("relative/dir")
	require.NoError(t, err)
	assert.Equal(t, "relative/dir", got)
}
