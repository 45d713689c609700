// Package config defines the top-level configuration for the propscout
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PROPSCOUT_* environment variables.
type Config struct {
	Sources   SourcesConfig  `toml:"sources"`
	Postgres  PostgresConfig `toml:"postgres"`
	Redis     RedisConfig    `toml:"redis"`
	S3        S3Config       `toml:"s3"`
	OpenAI    OpenAIConfig   `toml:"openai"`
	Pipeline  PipelineConfig `toml:"pipeline"`
	Server    ServerConfig   `toml:"server"`
	LogLevel  string         `toml:"log_level"`
	LogFormat string         `toml:"log_format"`
}

// SourcesConfig holds per-source listing API parameters.
type SourcesConfig struct {
	Zillow      ZillowConfig      `toml:"zillow"`
	Realtor     RealtorConfig     `toml:"realtor"`
	Redfin      RedfinConfig      `toml:"redfin"`
	Foreclosure ForeclosureConfig `toml:"foreclosure"`
}

// ZillowConfig holds the Zillow RapidAPI parameters.
type ZillowConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	ApiHost string `toml:"api_host"`
}

// RealtorConfig holds the Realtor RapidAPI parameters.
type RealtorConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	ApiHost string `toml:"api_host"`
}

// RedfinConfig holds the Redfin scrape parameters. Redfin has no API key;
// listings are scraped from the public ZIP pages.
type RedfinConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// ForeclosureConfig holds the foreclosure data provider parameters.
type ForeclosureConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for export
// archival. Disabled by default; exports are still returned to the caller
// when disabled, they just are not archived.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// OpenAIConfig holds the outreach generation parameters. An empty api_key
// switches outreach to the deterministic template.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// PipelineConfig holds aggregation pipeline parameters.
type PipelineConfig struct {
	// MinZipDelay / MaxZipDelay bound the randomized pause between
	// consecutive ZIP codes within one search.
	MinZipDelay duration `toml:"min_zip_delay"`
	MaxZipDelay duration `toml:"max_zip_delay"`

	// CompsLimit caps how many comparable listings feed each property's
	// offer and ROI estimates.
	CompsLimit int `toml:"comps_limit"`

	// CompsTTL is the lifetime of cached comps lookups.
	CompsTTL duration `toml:"comps_ttl"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`

	// ApiKey, when set, is required in the X-API-Key header of every
	// /api/ request.
	ApiKey string `toml:"api_key"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Sources: SourcesConfig{
			Zillow: ZillowConfig{
				Enabled: true,
				BaseURL: "https://zillow-com1.p.rapidapi.com",
				ApiHost: "zillow-com1.p.rapidapi.com",
			},
			Realtor: RealtorConfig{
				Enabled: true,
				BaseURL: "https://realtor.p.rapidapi.com",
				ApiHost: "realtor.p.rapidapi.com",
			},
			Redfin: RedfinConfig{
				Enabled: true,
				BaseURL: "https://www.redfin.com",
			},
			Foreclosure: ForeclosureConfig{
				Enabled: false,
				BaseURL: "https://api.foreclosure.com",
			},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "propscout",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "propscout-exports",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com",
			Model:   "gpt-4",
		},
		Pipeline: PipelineConfig{
			MinZipDelay: duration{1 * time.Second},
			MaxZipDelay: duration{3 * time.Second},
			CompsLimit:  5,
			CompsTTL:    duration{2 * time.Minute},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats enumerates the accepted values for Config.LogFormat.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q (valid: json, console)", c.LogFormat))
	}

	// Sources — at least one must be enabled, and enabled API sources need
	// their credentials.
	if !c.Sources.Zillow.Enabled && !c.Sources.Realtor.Enabled &&
		!c.Sources.Redfin.Enabled && !c.Sources.Foreclosure.Enabled {
		errs = append(errs, "sources: at least one source must be enabled")
	}
	if c.Sources.Zillow.Enabled {
		if c.Sources.Zillow.BaseURL == "" {
			errs = append(errs, "sources.zillow: base_url must not be empty")
		}
		if c.Sources.Zillow.ApiKey == "" {
			errs = append(errs, "sources.zillow: api_key is required when enabled")
		}
	}
	if c.Sources.Realtor.Enabled {
		if c.Sources.Realtor.BaseURL == "" {
			errs = append(errs, "sources.realtor: base_url must not be empty")
		}
		if c.Sources.Realtor.ApiKey == "" {
			errs = append(errs, "sources.realtor: api_key is required when enabled")
		}
	}
	if c.Sources.Redfin.Enabled && c.Sources.Redfin.BaseURL == "" {
		errs = append(errs, "sources.redfin: base_url must not be empty")
	}
	if c.Sources.Foreclosure.Enabled {
		if c.Sources.Foreclosure.BaseURL == "" {
			errs = append(errs, "sources.foreclosure: base_url must not be empty")
		}
		if c.Sources.Foreclosure.ApiKey == "" {
			errs = append(errs, "sources.foreclosure: api_key is required when enabled")
		}
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Pipeline
	if c.Pipeline.MinZipDelay.Duration < 0 {
		errs = append(errs, "pipeline: min_zip_delay must not be negative")
	}
	if c.Pipeline.MaxZipDelay.Duration < c.Pipeline.MinZipDelay.Duration {
		errs = append(errs, "pipeline: max_zip_delay must be >= min_zip_delay")
	}
	if c.Pipeline.CompsLimit < 1 {
		errs = append(errs, "pipeline: comps_limit must be >= 1")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
