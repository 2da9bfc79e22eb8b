package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RealizedBands/internal/merge"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "realized_price", cfg.Feeds.RealizedPrice)
	assert.Equal(t, 20*time.Second, cfg.Feeds.Timeout)
	assert.Equal(t, 8*time.Second, cfg.Feeds.LiveTimeout)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.TelegramEnabled())

	mc, err := cfg.MergeConfig()
	require.NoError(t, err)
	assert.Equal(t, merge.DefaultConfig(), mc)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: "127.0.0.1:9000"
feeds:
  timeout: 15s
  live_timeout: 3s
  mock: true
engine:
  multipliers: [0.5, 1.5, 2, 3, 4]
  window_start: "2020-06-01"
  stride: 7
  min_coverage: 30
  replace_after: 6h
cache:
  backend: none
  ttl: 10m
schedule:
  refresh_cron: "0 0 * * * *"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, 15*time.Second, cfg.Feeds.Timeout)
	assert.True(t, cfg.Feeds.Mock)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "0 0 * * * *", cfg.Schedule.RefreshCron)

	mc, err := cfg.MergeConfig()
	require.NoError(t, err)
	assert.Equal(t, [5]float64{0.5, 1.5, 2, 3, 4}, mc.Multipliers)
	assert.Equal(t, time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC), mc.WindowStart)
	assert.Equal(t, 7, mc.Stride)
	assert.Equal(t, 30, mc.MinCoverage)
	assert.Equal(t, 6*time.Hour, mc.ReplaceAfter)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("MOCK_FEEDS", "true")

	cfg, err := Load(writeConfig(t, "server:\n  listen_addr: \":1\"\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.True(t, cfg.Feeds.Mock)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"live timeout longer than timeout", func(c *Config) { c.Feeds.LiveTimeout = time.Minute }},
		{"negative timeout", func(c *Config) { c.Feeds.Timeout = -time.Second }},
		{"four multipliers", func(c *Config) { c.Engine.Multipliers = []float64{0.8, 1.25, 1.7, 2.4} }},
		{"bad window start", func(c *Config) { c.Engine.WindowStart = "01/01/2018" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = BackendRedis; c.Cache.RedisAddr = "" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t"; c.Telegram.ChatID = "" }},
		{"missing url", func(c *Config) { c.Feeds.HistoryURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
