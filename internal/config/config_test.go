package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every PROJECTCATALOG_ env var that Load() reads.
var allConfigKeys = []string{
	"PROJECTCATALOG_GITHUB_TOKEN",
	"PROJECTCATALOG_LISTEN_ADDR",
	"PROJECTCATALOG_DB_PATH",
	"PROJECTCATALOG_REFRESH_INTERVAL",
	"PROJECTCATALOG_LOG_LEVEL",
	"PROJECTCATALOG_LOG_FORMAT",
	"PROJECTCATALOG_SECRET_KEY",
}

// isolateConfigEnv saves and unsets all PROJECTCATALOG_ env vars so tests
// don't inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PROJECTCATALOG_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("PROJECTCATALOG_REFRESH_INTERVAL", "10m")
	t.Setenv("PROJECTCATALOG_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("PROJECTCATALOG_DB_PATH", "/tmp/test.db")
	t.Setenv("PROJECTCATALOG_LOG_LEVEL", "debug")
	t.Setenv("PROJECTCATALOG_LOG_FORMAT", "json")

	cfg, err := parse()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.True(t, cfg.HasGitHubToken())
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := parse()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.GitHubToken)
	assert.False(t, cfg.HasGitHubToken())
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "projectcatalog.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PROJECTCATALOG_REFRESH_INTERVAL", "not-a-duration")

	cfg, err := parse()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-duration")
}

func TestLoad_NonPositiveRefreshInterval(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PROJECTCATALOG_REFRESH_INTERVAL", "0s")

	cfg, err := parse()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJECTCATALOG_REFRESH_INTERVAL")
}

func TestLoad_InvalidLogSettings(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PROJECTCATALOG_LOG_LEVEL", "loud")
	t.Setenv("PROJECTCATALOG_LOG_FORMAT", "xml")

	cfg, err := parse()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJECTCATALOG_LOG_LEVEL")
	assert.Contains(t, err.Error(), "PROJECTCATALOG_LOG_FORMAT")
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PROJECTCATALOG_LISTEN_ADDR", "127.0.0.1:7000")

	dir := t.TempDir()
	dotenv := "PROJECTCATALOG_DB_PATH=/data/catalog.db\nPROJECTCATALOG_LISTEN_ADDR=0.0.0.0:1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))
	t.Chdir(dir)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr, "environment wins over .env")
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	var buf bytes.Buffer

	logger := cfg.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "project", "banana/peel")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "banana/peel", entry["project"])
}

func TestNewLogger_Text(t *testing.T) {
	cfg := &Config{LogLevel: "info", LogFormat: "text"}
	var buf bytes.Buffer

	cfg.NewLogger(&buf).Info("hello", "k", "v")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestLoad_SecretKey_Absent(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := parse()

	require.NoError(t, err)
	assert.Nil(t, cfg.SecretKey())
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("PROJECTCATALOG_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := parse()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey(), 32)
}

func TestLoad_SecretKey_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "too short", value: "deadbeef"},
		{name: "not hex", value: "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("PROJECTCATALOG_SECRET_KEY", tt.value)

			cfg, err := parse()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PROJECTCATALOG_SECRET_KEY")
		})
	}
}
