package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PROPSCOUT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PROPSCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Sources ──
	setBool(&cfg.Sources.Zillow.Enabled, "PROPSCOUT_SOURCES_ZILLOW_ENABLED")
	setStr(&cfg.Sources.Zillow.BaseURL, "PROPSCOUT_SOURCES_ZILLOW_BASE_URL")
	setStr(&cfg.Sources.Zillow.ApiKey, "PROPSCOUT_SOURCES_ZILLOW_API_KEY")
	setStr(&cfg.Sources.Zillow.ApiHost, "PROPSCOUT_SOURCES_ZILLOW_API_HOST")
	setBool(&cfg.Sources.Realtor.Enabled, "PROPSCOUT_SOURCES_REALTOR_ENABLED")
	setStr(&cfg.Sources.Realtor.BaseURL, "PROPSCOUT_SOURCES_REALTOR_BASE_URL")
	setStr(&cfg.Sources.Realtor.ApiKey, "PROPSCOUT_SOURCES_REALTOR_API_KEY")
	setStr(&cfg.Sources.Realtor.ApiHost, "PROPSCOUT_SOURCES_REALTOR_API_HOST")
	setBool(&cfg.Sources.Redfin.Enabled, "PROPSCOUT_SOURCES_REDFIN_ENABLED")
	setStr(&cfg.Sources.Redfin.BaseURL, "PROPSCOUT_SOURCES_REDFIN_BASE_URL")
	setBool(&cfg.Sources.Foreclosure.Enabled, "PROPSCOUT_SOURCES_FORECLOSURE_ENABLED")
	setStr(&cfg.Sources.Foreclosure.BaseURL, "PROPSCOUT_SOURCES_FORECLOSURE_BASE_URL")
	setStr(&cfg.Sources.Foreclosure.ApiKey, "PROPSCOUT_SOURCES_FORECLOSURE_API_KEY")

	// RapidAPI issues one key per account; this shorthand sets both RapidAPI
	// sources at once.
	setStr(&cfg.Sources.Zillow.ApiKey, "PROPSCOUT_RAPIDAPI_KEY")
	setStr(&cfg.Sources.Realtor.ApiKey, "PROPSCOUT_RAPIDAPI_KEY")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "PROPSCOUT_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "PROPSCOUT_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "PROPSCOUT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PROPSCOUT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PROPSCOUT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PROPSCOUT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PROPSCOUT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PROPSCOUT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PROPSCOUT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PROPSCOUT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PROPSCOUT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PROPSCOUT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PROPSCOUT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PROPSCOUT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PROPSCOUT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PROPSCOUT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PROPSCOUT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PROPSCOUT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PROPSCOUT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PROPSCOUT_S3_REGION")
	setStr(&cfg.S3.Bucket, "PROPSCOUT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PROPSCOUT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PROPSCOUT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PROPSCOUT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PROPSCOUT_S3_FORCE_PATH_STYLE")

	// ── OpenAI ──
	setStr(&cfg.OpenAI.BaseURL, "PROPSCOUT_OPENAI_BASE_URL")
	setStr(&cfg.OpenAI.ApiKey, "PROPSCOUT_OPENAI_API_KEY")
	setStr(&cfg.OpenAI.ApiKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.OpenAI.Model, "PROPSCOUT_OPENAI_MODEL")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.MinZipDelay, "PROPSCOUT_PIPELINE_MIN_ZIP_DELAY")
	setDuration(&cfg.Pipeline.MaxZipDelay, "PROPSCOUT_PIPELINE_MAX_ZIP_DELAY")
	setInt(&cfg.Pipeline.CompsLimit, "PROPSCOUT_PIPELINE_COMPS_LIMIT")
	setDuration(&cfg.Pipeline.CompsTTL, "PROPSCOUT_PIPELINE_COMPS_TTL")

	// ── Server ──
	setInt(&cfg.Server.Port, "PROPSCOUT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PROPSCOUT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiKey, "PROPSCOUT_SERVER_API_KEY")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "PROPSCOUT_LOG_LEVEL")
	setStr(&cfg.LogFormat, "PROPSCOUT_LOG_FORMAT")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
