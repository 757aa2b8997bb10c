package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse(`
[server]
addr = "127.0.0.1:9000"
write_timeout = "30s"
cors_origins = ["https://example.com"]

[log]
format = "json"
`)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration, "untouched fields keep defaults")
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"bad duration": "[server]\nread_timeout = \"soon\"",
		"bad level":    "[log]\nlevel = \"loud\"",
		"bad format":   "[output]\nformat = \"xml\"",
		"bad color":    "[output]\ncolor = \"sometimes\"",
		"bad toml":     "[server\naddr = 1",
		"negative":     "[server]\nrate_limit = -1",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			assert.Error(t, err)
		})
	}
}

func TestParse_ExplicitZero(t *testing.T) {
	cfg, err := Parse("[server]\nrate_limit = 0\n")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Server.RateLimit, "rate_limit = 0 disables limiting")
	assert.Equal(t, Default().Server.MaxBodyBytes, cfg.Server.MaxBodyBytes)

	_, err = Parse("[server]\nmax_body_bytes = 0\n")
	assert.ErrorContains(t, err, "max_body_bytes must be positive")
}

func TestLoad_FileExplicitZero(t *testing.T) {
	t.Setenv("EEFORMULA_RATE_LIMIT", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nrate_limit = 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, env(map[string]string{
		"EEFORMULA_ADDR":         ":9999",
		"EEFORMULA_LOG_LEVEL":    "debug",
		"EEFORMULA_FORMAT":       "yaml",
		"EEFORMULA_RATE_LIMIT":   "5",
		"EEFORMULA_CORS_ORIGINS": "https://a.example, ,https://b.example",
		"EEFORMULA_COLOR":        "  ",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "auto", cfg.Output.Color, "blank values are ignored")

	err = ApplyEnv(Default(), env(map[string]string{"EEFORMULA_RATE_LIMIT": "lots"}))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":7070\"\n"), 0o644))

	t.Setenv("EEFORMULA_LOG_LEVEL", "warn")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "eeformula", "config.toml"), DefaultPath())
}

func TestEncode_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))
	assert.Contains(t, buf.String(), `write_timeout = "15s"`)

	cfg, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown", "formula", "Power")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"formula":"Power"`)

	buf.Reset()
	logger = LogConfig{Level: "warn", Format: "text"}.NewLogger(&buf, true)
	logger.Debug("details")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, l)
	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
