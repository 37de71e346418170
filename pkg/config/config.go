package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for prorab-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, signing keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional dashboard cache)
	Redis RedisConfig `yaml:"redis"`

	// Risk engine configuration
	Risk RiskConfig `yaml:"risk"`

	// MigrationsPath is the directory containing SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// AuthConfig holds authentication-related configuration.
// Token issuance is owned by an external auth service; this service only
// verifies bearer tokens.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Off by default so local development works without the auth service;
	// production deployments must set AUTH_ENABLE_VERIFICATION=true.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"false"`

	// JWKSURL is the auth service's JWKS endpoint used to fetch verification keys.
	JWKSURL string `yaml:"jwks_url" env:"AUTH_JWKS_URL" env-default:""`

	// HMACSecret is a shared-secret fallback for local setups without JWKS.
	HMACSecret string `yaml:"-" env:"AUTH_HMAC_SECRET"` // Secret - not in YAML

	// Issuer is the expected token issuer. Empty disables the issuer check.
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:""`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"prorab"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"prorab_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`

	// Pool recycling. Zero values fall back to the database package defaults.
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes" env:"PGCONN_MAX_LIFETIME_MINUTES" env-default:"60"`
	ConnMaxIdleMinutes     int `yaml:"conn_max_idle_minutes" env:"PGCONN_MAX_IDLE_MINUTES" env-default:"30"`
}

// RedisConfig holds Redis configuration for the high-risk dashboard cache.
// An empty host disables caching entirely.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// RiskConfig holds tunables for the risk engine's read side.
type RiskConfig struct {
	// HighRiskCacheTTLSeconds is how long the cached high-risk project list
	// stays valid. Zero disables caching even when Redis is configured.
	HighRiskCacheTTLSeconds int `yaml:"high_risk_cache_ttl_seconds" env:"RISK_HIGH_RISK_CACHE_TTL_SECONDS" env-default:"30"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate rejects configurations that would fail at first use instead of at startup.
func (c *Config) validate() error {
	if c.Auth.EnableVerification && c.Auth.JWKSURL == "" && c.Auth.HMACSecret == "" {
		return fmt.Errorf("auth verification enabled but neither AUTH_JWKS_URL nor AUTH_HMAC_SECRET is set")
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("database max_connections must be positive")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
