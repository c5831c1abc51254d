package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Sync        SyncConfig      `toml:"sync"`
	Yahoo       YahooConfig     `toml:"yahoo"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
	// HistoryCachePath overrides the default price cache location
	// (<badger.path>/history-cache). Also mutable at runtime via settings.
	HistoryCachePath string `toml:"history_cache_path"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// PortfolioConfig contains valuation defaults.
type PortfolioConfig struct {
	ReportingCurrency string `toml:"reporting_currency" validate:"len=3"`
	// AnchorCurrency is the pivot used to triangulate currency pairs
	// that have no direct or inverse rate.
	AnchorCurrency string `toml:"anchor_currency" validate:"len=3"`
}

// SyncConfig contains market data sync configuration.
type SyncConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
	// FetchDelay is the pause before each live history request, keeping
	// request pacing polite toward the provider.
	FetchDelay time.Duration `toml:"fetch_delay"`
}

// YahooConfig contains Yahoo Finance client configuration.
type YahooConfig struct {
	BaseURL        string        `toml:"base_url"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimit      int           `toml:"rate_limit"` // Requests per second
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Portfolio: PortfolioConfig{
			ReportingCurrency: "CAD",
			AnchorCurrency:    "USD",
		},
		Sync: SyncConfig{
			Enabled:    true,
			Schedule:   "*/5 * * * *",
			FetchDelay: 400 * time.Millisecond,
		},
		Yahoo: YahooConfig{
			BaseURL:        "https://query1.finance.yahoo.com",
			RequestTimeout: 20 * time.Second,
			RateLimit:      2,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, later files
// overriding earlier ones. Priority: env > last file > ... > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("FOLIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if cachePath := os.Getenv("FOLIO_HISTORY_CACHE_PATH"); cachePath != "" {
		config.Storage.HistoryCachePath = cachePath
	}

	// Logging configuration
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("FOLIO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Portfolio configuration. REPORTING_CURRENCY without a prefix is
	// honored for compatibility with existing deployments.
	if ccy := os.Getenv("FOLIO_REPORTING_CURRENCY"); ccy != "" {
		config.Portfolio.ReportingCurrency = strings.ToUpper(ccy)
	} else if ccy := os.Getenv("REPORTING_CURRENCY"); ccy != "" {
		config.Portfolio.ReportingCurrency = strings.ToUpper(ccy)
	}
	if anchor := os.Getenv("FOLIO_ANCHOR_CURRENCY"); anchor != "" {
		config.Portfolio.AnchorCurrency = strings.ToUpper(anchor)
	}

	// Sync configuration
	if enabled := os.Getenv("FOLIO_SYNC_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Sync.Enabled = e
		}
	}
	if schedule := os.Getenv("FOLIO_SYNC_SCHEDULE"); schedule != "" {
		config.Sync.Schedule = schedule
	}
	if delay := os.Getenv("FOLIO_SYNC_FETCH_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			config.Sync.FetchDelay = d
		}
	}

	// Yahoo configuration
	if baseURL := os.Getenv("FOLIO_YAHOO_BASE_URL"); baseURL != "" {
		config.Yahoo.BaseURL = baseURL
	}
	if timeout := os.Getenv("FOLIO_YAHOO_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			config.Yahoo.RequestTimeout = t
		}
	}
	if rateLimit := os.Getenv("FOLIO_YAHOO_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.Yahoo.RateLimit = rl
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// HistoryCachePath returns the configured price cache location,
// defaulting to a directory next to the main database.
func (c *Config) HistoryCachePath() string {
	if c.Storage.HistoryCachePath != "" {
		return c.Storage.HistoryCachePath
	}
	return c.Storage.Badger.Path + "/history-cache"
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
