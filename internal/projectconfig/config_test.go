package projectconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ggassist.yaml"), []byte(content), 0o644))
}

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.Backend.URL)
	assert.Equal(t, DefaultBackendTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultCacheDir, cfg.Cache.Dir)
	assert.Equal(t, DefaultSessionLogDir, cfg.SessionLog.Dir)
	require.NotNil(t, cfg.Cache.Enabled)
	assert.False(t, *cfg.Cache.Enabled)
	assert.Empty(t, cfg.Chat.FilterDate)
}

func TestLoad_MergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `backend:
  url: http://localhost:9999
chat:
  filter_date: "2025-06-01"
cache:
  enabled: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Backend.URL)
	assert.Equal(t, "2025-06-01", cfg.Chat.FilterDate)
	require.NotNil(t, cfg.Cache.Enabled)
	assert.True(t, *cfg.Cache.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultBackendTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultCacheDir, cfg.Cache.Dir)
}

func TestLoad_WalksUpToFindConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `server:
  port: 4100
`)
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Server.Port)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `bakend:
  url: http://localhost:9999
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .ggassist.yaml")
}

func TestLoad_RejectsBadFilterDate(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `chat:
  filter_date: June 1st
`)

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoad_RejectsPortOutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `server:
  port: 70000
`)

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: [unclosed")

	_, err := Load(dir)
	require.Error(t, err)
}

func TestValidateBytes_Valid(t *testing.T) {
	errs := ValidateBytes([]byte(`backend:
  url: http://localhost:5000
  timeout: 30
session_log:
  enabled: true
  dir: logs
`))
	assert.Empty(t, errs)
}

func TestValidateBytes_ReportsLocation(t *testing.T) {
	errs := ValidateBytes([]byte(`server:
  port: not-a-number
`))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "/server/port")
}
