package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/gdmirror/gdmirror/internal/utils"
)

const (
	// ConfigFileName is the optional tool config file, read from the
	// working directory alongside the account config files.
	ConfigFileName = "gdmirror.json"
	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "GDMIRROR_"
)

// Config holds migration run configuration
type Config struct {
	// Parallel is the transfer worker-pool width per folder level
	Parallel int `json:"parallel"`

	// MaxRetries bounds retries of structural operations (list, create folder)
	MaxRetries int `json:"maxRetries"`

	// RetryBaseDelay is the base delay for structural retries in milliseconds
	RetryBaseDelay int `json:"retryBaseDelay"`

	// LedgerPath is the correspondence ledger file
	LedgerPath string `json:"ledgerPath"`

	// ErrorLogPath receives one line per permanent transfer failure
	ErrorLogPath string `json:"errorLogPath"`

	// StrategyPath is the skip-list configuration file
	StrategyPath string `json:"strategyPath"`

	// TempDir holds per-item download buffers
	TempDir string `json:"tempDir"`

	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Parallel:       utils.DefaultParallel,
		MaxRetries:     utils.DefaultMaxRetries,
		RetryBaseDelay: utils.DefaultRetryDelayMs,
		LedgerPath:     utils.DefaultLedgerPath,
		ErrorLogPath:   utils.DefaultErrorLogPath,
		StrategyPath:   utils.DefaultStrategyPath,
		TempDir:        "tmp",
		LogLevel:       "info",
	}
}

// Load loads configuration with precedence: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(ConfigFileName); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Parallel = n
		}
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvPrefix + "RETRY_BASE_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryBaseDelay = n
		}
	}
	if v := os.Getenv(EnvPrefix + "LEDGER_PATH"); v != "" {
		c.LedgerPath = v
	}
	if v := os.Getenv(EnvPrefix + "ERROR_LOG_PATH"); v != "" {
		c.ErrorLogPath = v
	}
	if v := os.Getenv(EnvPrefix + "STRATEGY_PATH"); v != "" {
		c.StrategyPath = v
	}
	if v := os.Getenv(EnvPrefix + "TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retryBaseDelay must not be negative, got %d", c.RetryBaseDelay)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	return nil
}
