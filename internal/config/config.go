// Package config loads schemad settings from an optional YAML file and
// SCHEMAD_* environment variables. Environment values win over the file,
// and the file wins over the defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SCHEMAD_"

// Config holds the full schemad configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// TrustProxy makes the request log use X-Forwarded-For / X-Real-IP.
	// Enable it only behind a reverse proxy that sets those headers.
	TrustProxy bool          `yaml:"trust_proxy" env:"TRUST_PROXY"`
	Schema     SchemaConfig  `yaml:"schema" envPrefix:"SCHEMA_"`
	Refresh    RefreshConfig `yaml:"refresh" envPrefix:"REFRESH_"`
	Tracing    TracingConfig `yaml:"tracing" envPrefix:"OTEL_"`
}

// SchemaConfig configures the upstream document and its local copy.
type SchemaConfig struct {
	SourceURL    string        `yaml:"source_url" env:"SOURCE_URL"`
	EnableFetch  bool          `yaml:"enable_fetch" env:"ENABLE_FETCH"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	MaxBytes     int64         `yaml:"max_bytes" env:"MAX_BYTES"`
	CacheDir     string        `yaml:"cache_dir" env:"CACHE_DIR"`
	// MaxAge is how old the cached document may be before startup fetches
	// a fresh one.
	MaxAge time.Duration `yaml:"max_age" env:"MAX_AGE"`
}

// RefreshConfig configures the refresh coordinator.
type RefreshConfig struct {
	Cooldown       time.Duration `yaml:"cooldown" env:"COOLDOWN"`
	AutoInterval   time.Duration `yaml:"auto_interval" env:"AUTO_INTERVAL"`
	BootstrapRetry time.Duration `yaml:"bootstrap_retry" env:"BOOTSTRAP_RETRY"`
}

// TracingConfig configures OTLP span export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" env:"ENABLED"`
	Endpoint    string  `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Schema: SchemaConfig{
			SourceURL:    "https://schema.autobot.tf/schema",
			EnableFetch:  true,
			FetchTimeout: 2 * time.Minute,
			MaxBytes:     256 << 20,
			CacheDir:     "/tmp/schemad/cache",
			MaxAge:       24 * time.Hour,
		},
		Refresh: RefreshConfig{
			Cooldown:       30 * time.Minute,
			BootstrapRetry: 30 * time.Second,
		},
		Tracing: TracingConfig{
			ServiceName: "schemad",
			SampleRatio: 1,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level %q: use debug, info, warn or error", c.LogLevel)
	}
	u, err := url.Parse(c.Schema.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("schema.source_url %q must be an http(s) URL", c.Schema.SourceURL)
	}
	if c.Schema.FetchTimeout <= 0 {
		return fmt.Errorf("schema.fetch_timeout must be > 0")
	}
	if c.Schema.MaxBytes <= 0 {
		return fmt.Errorf("schema.max_bytes must be > 0")
	}
	if c.Schema.MaxAge < 0 {
		return fmt.Errorf("schema.max_age must be >= 0")
	}
	if c.Refresh.Cooldown <= 0 {
		return fmt.Errorf("refresh.cooldown must be > 0")
	}
	if c.Refresh.AutoInterval < 0 {
		return fmt.Errorf("refresh.auto_interval must be >= 0")
	}
	if c.Refresh.BootstrapRetry <= 0 {
		return fmt.Errorf("refresh.bootstrap_retry must be > 0")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1]")
	}
	return nil
}

// SlogLevel returns the parsed log level. Validate has already checked it.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
