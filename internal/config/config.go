package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"RealizedBands/internal/merge"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Feeds struct {
		MetricBaseURL    string        `yaml:"metric_base_url"`
		RealizedPrice    string        `yaml:"realized_price"`
		STHRealizedPrice string        `yaml:"sth_realized_price"`
		LTHRealizedPrice string        `yaml:"lth_realized_price"`
		HistoryURL       string        `yaml:"history_url"`
		LiveURL          string        `yaml:"live_url"`
		Timeout          time.Duration `yaml:"timeout"`
		LiveTimeout      time.Duration `yaml:"live_timeout"`
		Mock             bool          `yaml:"mock"`
	} `yaml:"feeds"`
	Engine struct {
		Multipliers  []float64     `yaml:"multipliers"`
		WindowStart  string        `yaml:"window_start"`
		Stride       int           `yaml:"stride"`
		MinCoverage  int           `yaml:"min_coverage"`
		ReplaceAfter time.Duration `yaml:"replace_after"`
	} `yaml:"engine"`
	Cache struct {
		Backend       string        `yaml:"backend"`
		TTL           time.Duration `yaml:"ttl"`
		SQLitePath    string        `yaml:"sqlite_path"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error: defaults cover every field.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("MOCK_FEEDS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Feeds.Mock = b
		}
	}
}

func (c *Config) applyDefaults() {
	def := merge.DefaultConfig()

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Feeds.MetricBaseURL == "" {
		c.Feeds.MetricBaseURL = "https://charts.bgeometrics.com/files"
	}
	if c.Feeds.RealizedPrice == "" {
		c.Feeds.RealizedPrice = "realized_price"
	}
	if c.Feeds.STHRealizedPrice == "" {
		c.Feeds.STHRealizedPrice = "sth_realized_price"
	}
	if c.Feeds.LTHRealizedPrice == "" {
		c.Feeds.LTHRealizedPrice = "lth_realized_price"
	}
	if c.Feeds.HistoryURL == "" {
		c.Feeds.HistoryURL = "https://api.blockchain.info/charts/market-price?timespan=all&format=json&sampled=false"
	}
	if c.Feeds.LiveURL == "" {
		c.Feeds.LiveURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"
	}
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = 20 * time.Second
	}
	if c.Feeds.LiveTimeout == 0 {
		c.Feeds.LiveTimeout = 8 * time.Second
	}
	if len(c.Engine.Multipliers) == 0 {
		c.Engine.Multipliers = def.Multipliers[:]
	}
	if c.Engine.WindowStart == "" {
		c.Engine.WindowStart = def.WindowStart.Format("2006-01-02")
	}
	if c.Engine.Stride == 0 {
		c.Engine.Stride = def.Stride
	}
	if c.Engine.MinCoverage == 0 {
		c.Engine.MinCoverage = def.MinCoverage
	}
	if c.Engine.ReplaceAfter == 0 {
		c.Engine.ReplaceAfter = def.ReplaceAfter
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/realized_bands.db"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */30 * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * *"
	}
}

// MergeConfig converts the engine section into merge thresholds.
func (c *Config) MergeConfig() (merge.Config, error) {
	var mc merge.Config
	if len(c.Engine.Multipliers) != len(mc.Multipliers) {
		return mc, fmt.Errorf("engine.multipliers needs %d values, got %d", len(mc.Multipliers), len(c.Engine.Multipliers))
	}
	copy(mc.Multipliers[:], c.Engine.Multipliers)

	start, err := time.Parse("2006-01-02", c.Engine.WindowStart)
	if err != nil {
		return mc, fmt.Errorf("engine.window_start: %w", err)
	}
	mc.WindowStart = start.UTC()
	mc.Stride = c.Engine.Stride
	mc.MinCoverage = c.Engine.MinCoverage
	mc.ReplaceAfter = c.Engine.ReplaceAfter
	return mc, mc.Validate()
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if !c.Feeds.Mock {
		if c.Feeds.MetricBaseURL == "" || c.Feeds.HistoryURL == "" || c.Feeds.LiveURL == "" {
			return fmt.Errorf("feeds urls are required unless feeds.mock is set")
		}
	}
	if c.Feeds.Timeout <= 0 || c.Feeds.LiveTimeout <= 0 {
		return fmt.Errorf("feeds timeouts must be positive")
	}
	if c.Feeds.LiveTimeout > c.Feeds.Timeout {
		return fmt.Errorf("feeds.live_timeout (%v) must not exceed feeds.timeout (%v)", c.Feeds.LiveTimeout, c.Feeds.Timeout)
	}
	if _, err := c.MergeConfig(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not one of memory, sqlite, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.TelegramEnabled() && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}
