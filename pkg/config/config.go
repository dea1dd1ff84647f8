package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the master dashboard.
type Config struct {
	APIBaseURL string `envconfig:"MASTER_API_BASE_URL" default:"http://127.0.0.1:5000"`
	ListenAddr string `envconfig:"MASTER_LISTEN_ADDR" default:":8090"`
	BasePath   string `envconfig:"MASTER_BASE_PATH" default:"/admin/master"`
	Locale     string `envconfig:"MASTER_LOCALE" default:"es"`
	Timezone   string `envconfig:"MASTER_TIMEZONE" default:"Local"`

	AlertTTL           time.Duration `envconfig:"MASTER_ALERT_TTL" default:"5s"`
	CatalogNoticeDelay time.Duration `envconfig:"MASTER_CATALOG_NOTICE_DELAY" default:"2s"`
	HTTPTimeout        time.Duration `envconfig:"MASTER_HTTP_TIMEOUT" default:"0s"`
	SessionIdleTTL     time.Duration `envconfig:"MASTER_SESSION_IDLE_TTL" default:"30m"`
	MaxSessions        int           `envconfig:"MASTER_MAX_SESSIONS" default:"1000"`

	MovementsDays  int `envconfig:"MASTER_MOVEMENTS_DAYS" default:"30"`
	MovementsLimit int `envconfig:"MASTER_MOVEMENTS_LIMIT" default:"100"`
	AnalyticsDays  int `envconfig:"MASTER_ANALYTICS_DAYS" default:"30"`

	MessagesPath    string `envconfig:"MASTER_MESSAGES_PATH"`
	ChartAssetsHost string `envconfig:"MASTER_CHART_ASSETS_HOST"`
	RateLimitPerMin int    `envconfig:"MASTER_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the dashboard cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("config: MASTER_API_BASE_URL must be provided")
	}
	if c.AlertTTL <= 0 {
		return errors.New("config: MASTER_ALERT_TTL must be positive")
	}
	if c.CatalogNoticeDelay < 0 || c.HTTPTimeout < 0 || c.SessionIdleTTL < 0 {
		return errors.New("config: durations must not be negative")
	}
	if c.MaxSessions < 0 {
		return errors.New("config: MASTER_MAX_SESSIONS must not be negative")
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("config: MASTER_BASE_PATH %q must start with /", c.BasePath)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return nil
}

// Location resolves the configured time zone for naive server timestamps.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: MASTER_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// NewLogger builds an apex logger writing to w in the configured format
// (text, json or cli).
func (c *Config) NewLogger(w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	var handler log.Handler
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "json":
		handler = json.New(w)
	case "cli", "pretty":
		handler = cli.New(w)
	case "", "text":
		handler = text.New(w)
	default:
		return nil, fmt.Errorf("config: unknown LOG_FORMAT %q", c.LogFormat)
	}
	return &log.Logger{Handler: handler, Level: level}, nil
}
