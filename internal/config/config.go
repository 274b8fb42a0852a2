// Package config loads the crawler configuration.
//
// Values are resolved in this order, later ones winning: built-in defaults,
// an optional YAML file, LATIN_EVENTS_* environment variables and finally
// command-line flags applied by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LATIN_EVENTS_"

// HTTP configures the shared source client.
type HTTP struct {
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`         // per request
	UserAgent  string        `yaml:"user_agent" env:"USER_AGENT"`
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"` // retries after the first attempt
	Backoff    time.Duration `yaml:"backoff" env:"BACKOFF"`         // initial backoff
	MaxBackoff time.Duration `yaml:"max_backoff" env:"MAX_BACKOFF"`
}

// Latino configures the latino.ch adapter.
type Latino struct {
	Enabled      bool   `yaml:"enabled" env:"ENABLED"`
	BaseURL      string `yaml:"base_url" env:"BASE_URL"`
	Locale       string `yaml:"locale" env:"LOCALE"`
	MaxIdlePages int    `yaml:"max_idle_pages" env:"MAX_IDLE_PAGES"` // consecutive pages without new events
	MaxPages     int    `yaml:"max_pages" env:"MAX_PAGES"`
}

// BachataBern configures the bachata-bern.ch adapter.
type BachataBern struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	PerPage  int    `yaml:"per_page" env:"PER_PAGE"`
	MaxPages int    `yaml:"max_pages" env:"MAX_PAGES"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level" env:"LEVEL"` // debug|info|warn|error
}

// Serve configures the serve command.
type Serve struct {
	Addr       string `yaml:"addr" env:"ADDR"`
	Schedule   string `yaml:"schedule" env:"SCHEDULE"` // cron spec with seconds
	RunOnStart bool   `yaml:"run_on_start" env:"RUN_ON_START"`
}

// Config is the complete crawler configuration.
type Config struct {
	DataDir             string  `yaml:"data_dir" env:"DATA_DIR"`
	PublicDir           string  `yaml:"public_dir" env:"PUBLIC_DIR"`
	DaySpan             int     `yaml:"day_span" env:"DAY_SPAN"`
	Timezone            string  `yaml:"timezone" env:"TIMEZONE"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" env:"SIMILARITY_THRESHOLD"`
	Strict              bool    `yaml:"strict" env:"STRICT"`
	MetricsTextfile     string  `yaml:"metrics_textfile" env:"METRICS_TEXTFILE"`
	// Calendar also publishes events.ics next to the public feed.
	Calendar bool `yaml:"calendar" env:"CALENDAR"`

	HTTP        HTTP        `yaml:"http" envPrefix:"HTTP_"`
	Latino      Latino      `yaml:"latino" envPrefix:"LATINO_"`
	BachataBern BachataBern `yaml:"bachata_bern" envPrefix:"BACHATA_BERN_"`
	Log         Log         `yaml:"log" envPrefix:"LOG_"`
	Serve       Serve       `yaml:"serve" envPrefix:"SERVE_"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		DataDir:             "data",
		PublicDir:           "public",
		DaySpan:             90,
		Timezone:            "Europe/Zurich",
		SimilarityThreshold: 1.0,
		Calendar:            true,
		HTTP: HTTP{
			Timeout:    30 * time.Second,
			UserAgent:  "Mozilla/5.0 (Android 14; Pixel 8)",
			MaxRetries: 2,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
		Latino: Latino{
			Enabled:      true,
			BaseURL:      "https://www.latino.ch",
			Locale:       "de",
			MaxIdlePages: 2,
			MaxPages:     60,
		},
		BachataBern: BachataBern{
			Enabled:  true,
			BaseURL:  "https://bachata-bern.ch",
			PerPage:  100,
			MaxPages: 20,
		},
		Log: Log{Level: "info"},
		Serve: Serve{
			Addr:       ":8080",
			Schedule:   "0 15 5 * * *",
			RunOnStart: true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize expands home-relative directories and validates the result.
// Call it again after applying flag overrides.
func (c *Config) Finalize() error {
	var err error
	if c.DataDir, err = ExpandHome(c.DataDir); err != nil {
		return err
	}
	if c.PublicDir, err = ExpandHome(c.PublicDir); err != nil {
		return err
	}
	return c.Validate()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if strings.TrimSpace(c.PublicDir) == "" {
		errs = append(errs, errors.New("public_dir is required"))
	}
	if c.DaySpan <= 0 {
		errs = append(errs, fmt.Errorf("day_span must be positive, got %d", c.DaySpan))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity_threshold must be within [0, 1], got %v", c.SimilarityThreshold))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, errors.New("http.max_retries must not be negative"))
	}
	if c.Latino.Enabled && c.Latino.MaxPages <= 0 {
		errs = append(errs, errors.New("latino.max_pages must be positive"))
	}
	if c.BachataBern.Enabled && c.BachataBern.MaxPages <= 0 {
		errs = append(errs, errors.New("bachata_bern.max_pages must be positive"))
	}
	if !c.Latino.Enabled && !c.BachataBern.Enabled {
		errs = append(errs, errors.New("at least one source must be enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}
