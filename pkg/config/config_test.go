package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ServerPort(t *testing.T) {
	tests := []struct {
		name      string
		port      int
		shouldErr bool
	}{
		{name: "port 0 invalid", port: 0, shouldErr: true},
		{name: "port -1 invalid", port: -1, shouldErr: true},
		{name: "port 65536 invalid", port: 65536, shouldErr: true},
		{name: "port 1 valid", port: 1},
		{name: "port 8080 valid", port: 8080},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Server.Port = tc.port

			err := cfg.Validate()
			if tc.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate_Fields(t *testing.T) {
	tests := []struct {
		name     string
		setupCfg func(*Config)
	}{
		{"unknown database type", func(c *Config) { c.Database.Type = "mysql" }},
		{"empty sqlite path", func(c *Config) { c.Database.Path = "" }},
		{"postgres without host", func(c *Config) { c.Database.Type = "postgres"; c.Database.Host = "" }},
		{"postgres without name", func(c *Config) { c.Database.Type = "postgres"; c.Database.Name = "" }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"zero generator timeout", func(c *Config) { c.Generator.Timeout = 0 }},
		{"negative generator rate", func(c *Config) { c.Generator.RatePerMinute = -1 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"zero job concurrency", func(c *Config) { c.Jobs.Concurrency = 0 }},
		{"zero chart days", func(c *Config) { c.Analytics.ChartDays = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.setupCfg(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ANALYTICS_CHART_DAYS", "14")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")

	cfg := defaultConfig()
	cfg.applyEnv()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Jobs.RedisURL)
	assert.Equal(t, 14, cfg.Analytics.ChartDays)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Server.AllowedOrigins)
}

func TestConfig_ApplyEnv_IgnoresMalformed(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("SESSION_TTL", "forever")

	cfg := defaultConfig()
	cfg.applyEnv()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7070\ngenerator:\n  model: gemini-pro\nanalytics:\n  chart_days: 7\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("INQUIZZITIVE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "gemini-pro", cfg.Generator.Model)
	assert.Equal(t, 7, cfg.Analytics.ChartDays)
	assert.Equal(t, "sqlite", cfg.Database.Type)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))
	t.Setenv("INQUIZZITIVE_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "./data/inquizzitive.db?mode=rwc&cache=shared&timeout=5000", cfg.DSN())

	cfg.Database.Type = "postgres"
	cfg.Database.Password = "secret"
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=inquizzitive sslmode=disable", cfg.DSN())
}
