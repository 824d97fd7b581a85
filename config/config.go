// Package config holds the runtime configuration. Values come from
// defaults, then the config file, then environment variables, each layer
// overriding the one before.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/wechatfed/fetcher"
	"github.com/pevans/wechatfed/scraper"
)

// Fetcher implementations selectable with scraper.fetcher.
const (
	FetcherChrome = "chrome"
	FetcherHTTP   = "http"
)

// Config is the complete runtime configuration.
type Config struct {
	Scraper ScraperConfig   `yaml:"scraper"`
	Account AccountConfig   `yaml:"account"`
	History HistoryConfig   `yaml:"history"`
	Log     LogConfig       `yaml:"log"`
	API     APIConfig       `yaml:"api"`
	Layouts scraper.Layouts `yaml:"layouts"`
}

// ScraperConfig controls page fetching.
type ScraperConfig struct {
	TimeoutMS         int    `yaml:"timeout_ms"`
	RetryCount        int    `yaml:"retry_count"`
	Headless          bool   `yaml:"headless"`
	Fetcher           string `yaml:"fetcher"` // "chrome" or "http"
	UserAgent         string `yaml:"user_agent"`
	RequestsPerMinute int    `yaml:"requests_per_minute"` // 0 disables limiting
}

// Timeout returns the per-page timeout.
func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// AccountConfig controls the account article list.
type AccountConfig struct {
	// FeedURLTemplate is a feed URL with %s standing for the account name.
	// When set, it is tried when the profile page cannot be found.
	FeedURLTemplate string `yaml:"feed_url_template"`
}

// HistoryConfig controls the call log. An empty DSN disables it.
type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			TimeoutMS:  30000,
			RetryCount: 3,
			Headless:   true,
			Fetcher:    FetcherChrome,
			UserAgent:  fetcher.DefaultUserAgent,
		},
		Log: LogConfig{
			Level: "info",
		},
		API: APIConfig{
			Addr: "127.0.0.1:8080",
		},
		Layouts: scraper.DefaultLayouts(),
	}
}

// Load builds the configuration from defaults, the config file and the
// process environment.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := cfg.LoadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through
// getenv. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	ints := []struct {
		name   string
		target *int
	}{
		{"WECHAT_SCRAPER_TIMEOUT", &c.Scraper.TimeoutMS},
		{"WECHAT_SCRAPER_RETRY_COUNT", &c.Scraper.RetryCount},
		{"WECHAT_SCRAPER_RPM", &c.Scraper.RequestsPerMinute},
	}
	for _, v := range ints {
		val := getenv(v.name)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.name, val, err)
		}
		*v.target = n
	}

	// Only "true" enables headless mode; any other value disables it.
	if val := getenv("WECHAT_SCRAPER_HEADLESS"); val != "" {
		c.Scraper.Headless = strings.ToLower(val) == "true"
	}

	strs := []struct {
		name   string
		target *string
	}{
		{"WECHAT_SCRAPER_FETCHER", &c.Scraper.Fetcher},
		{"WECHAT_SCRAPER_USER_AGENT", &c.Scraper.UserAgent},
		{"WECHATFED_ACCOUNT_FEED", &c.Account.FeedURLTemplate},
		{"WECHATFED_HISTORY_DSN", &c.History.DSN},
		{"WECHATFED_LOG_LEVEL", &c.Log.Level},
		{"WECHATFED_LOG_FILE", &c.Log.File},
		{"WECHATFED_API_ADDR", &c.API.Addr},
	}
	for _, v := range strs {
		if val := getenv(v.name); val != "" {
			*v.target = val
		}
	}

	return nil
}

// Validate checks values that would otherwise fail later in confusing
// ways.
func (c *Config) Validate() error {
	if c.Scraper.TimeoutMS <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got %d", c.Scraper.TimeoutMS)
	}
	if c.Scraper.RetryCount < 0 {
		return fmt.Errorf("scraper retry count must not be negative, got %d", c.Scraper.RetryCount)
	}
	if c.Scraper.RequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute must not be negative, got %d", c.Scraper.RequestsPerMinute)
	}
	switch c.Scraper.Fetcher {
	case FetcherChrome, FetcherHTTP:
	default:
		return fmt.Errorf("unknown fetcher %q (want %s or %s)", c.Scraper.Fetcher, FetcherChrome, FetcherHTTP)
	}
	if t := c.Account.FeedURLTemplate; t != "" && !strings.Contains(t, "%s") {
		return fmt.Errorf("account feed URL template must contain %%s")
	}
	return nil
}
