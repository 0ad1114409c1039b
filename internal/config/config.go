package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/alexanderramin/pmo/internal/api"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "pmo"

// Config holds everything the pmo binary reads at startup.
type Config struct {
	API       APIConfig       `yaml:"api"`
	DBPath    string          `yaml:"db_path"`
	Log       LogConfig       `yaml:"log"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 disables the timeout
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Debug      bool   `yaml:"debug"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type DashboardConfig struct {
	Interval    string `yaml:"interval"`
	Concurrency int    `yaml:"concurrency"`
}

// DefaultConfig returns a Config with sensible defaults. Paths follow the
// XDG base directory layout.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		DBPath: filepath.Join(xdg.DataHome, appName, appName+".db"),
		Log: LogConfig{
			Level:      "warn",
			File:       filepath.Join(xdg.StateHome, appName, appName+".log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Dashboard: DashboardConfig{
			Interval:    api.IntervalWeekly,
			Concurrency: 8,
		},
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Load builds the effective configuration: defaults, then the YAML file,
// then a .env file in the working directory, then PMO_* environment
// variables. An explicit path must exist; the default path is optional.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envOverride(&cfg.API.BaseURL, "PMO_API_BASE_URL")
	envOverrideInt(&cfg.API.TimeoutSeconds, "PMO_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.DBPath, "PMO_DB")
	envOverride(&cfg.Log.Level, "PMO_LOG_LEVEL")
	envOverride(&cfg.Log.File, "PMO_LOG_FILE")
	envOverrideBool(&cfg.Log.Debug, "PMO_DEBUG")
	envOverride(&cfg.Dashboard.Interval, "PMO_DASHBOARD_INTERVAL")
	envOverrideInt(&cfg.Dashboard.Concurrency, "PMO_DASHBOARD_CONCURRENCY")
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url %q must use http or https", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must not be negative")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Dashboard.Concurrency < 1 {
		return fmt.Errorf("dashboard.concurrency must be at least 1")
	}
	return nil
}

// ClientConfig converts the API section for api.NewClient.
func (c Config) ClientConfig() api.Config {
	return api.Config{
		BaseURL: c.API.BaseURL,
		Timeout: time.Duration(c.API.TimeoutSeconds) * time.Second,
	}
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
