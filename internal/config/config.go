package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is used when no PORT environment variable is set.
	DefaultPort = 3000

	// DefaultUpstreamTimeout bounds a single AI relay attempt.
	DefaultUpstreamTimeout = 30 * time.Second

	// DefaultDBPath is the embedded store file, relative to the working dir.
	DefaultDBPath = "advisord.db"

	// DefaultUpstreamURL points at a local inference runtime.
	DefaultUpstreamURL = "http://127.0.0.1:7860/api/v1/run/advisor"
)

// Upstream holds settings for the single AI inference endpoint.
type Upstream struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full advisord configuration. Values come from an optional
// YAML file (ADVISORD_CONFIG) with environment variables taking precedence.
type Config struct {
	Port     int      `yaml:"port"`
	DBPath   string   `yaml:"db_path"`
	Upstream Upstream `yaml:"upstream"`
}

// Load builds the configuration from defaults, then the optional config
// file, then environment overrides. Any parse failure is a fatal
// configuration error; advisord never starts with a half-read config.
func Load() (Config, error) {
	cfg := Config{
		Port:   DefaultPort,
		DBPath: DefaultDBPath,
		Upstream: Upstream{
			URL:     DefaultUpstreamURL,
			Timeout: DefaultUpstreamTimeout,
		},
	}

	if path := os.Getenv("ADVISORD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("ADVISORD_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ADVISORD_UPSTREAM_URL"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("ADVISORD_UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ADVISORD_UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		cfg.Upstream.Timeout = d
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65534 {
		// 65534 so the single +1 fallback step stays in range.
		return fmt.Errorf("port %d out of range 1-65534", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream url must not be empty")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.Upstream.Timeout)
	}
	return nil
}
