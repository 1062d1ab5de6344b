// Package config handles application configuration loading from an optional
// TOML file and environment variables. Environment variables win over the
// file, and the file wins over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends selectable with STORE_BACKEND.
const (
	BackendBlob       = "blob"       // Valkey, one JSON value per collection
	BackendRelational = "relational" // SQL rows, see SQLDriver
	BackendMemory     = "memory"     // in-process blob store, lost on exit
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string `toml:"host"`
	Port string `toml:"port"`
	Env  string `toml:"env"` // "development", "production", "testing"

	StoreBackend string `toml:"store_backend"`

	// Relational backend
	SQLDriver  string `toml:"sql_driver"` // "postgres" or "sqlite"
	SQLitePath string `toml:"sqlite_path"`
	DBHost     string `toml:"postgres_host"`
	DBPort     string `toml:"postgres_port"`
	DBUser     string `toml:"postgres_user"`
	DBPassword string `toml:"postgres_password"`
	DBName     string `toml:"postgres_db"`

	// Blob backend (Valkey, Redis-compatible)
	ValkeyHost     string `toml:"valkey_host"`
	ValkeyPort     string `toml:"valkey_port"`
	ValkeyPassword string `toml:"valkey_password"`
	ValkeyDB       int    `toml:"valkey_db"`
	BlobKeyPrefix  string `toml:"blob_key_prefix"`

	// HTTP surface
	CORSOrigins    []string `toml:"cors_origins"`     // empty allows any origin
	WriteRateLimit int      `toml:"write_rate_limit"` // writes per minute per client, 0 disables
	TrustProxy     bool     `toml:"trust_proxy"`      // key clients on X-Forwarded-For / X-Real-IP
}

func defaults() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           "8080",
		Env:            "development",
		StoreBackend:   BackendMemory,
		SQLDriver:      "postgres",
		SQLitePath:     "mediacatalog.db",
		DBHost:         "localhost",
		DBPort:         "5432",
		DBUser:         "mediacatalog",
		DBPassword:     "changeme",
		DBName:         "mediacatalog",
		ValkeyHost:     "localhost",
		ValkeyPort:     "6379",
		WriteRateLimit: 60,
	}
}

// Load reads configuration, applying development defaults where values are
// absent. CONFIG_FILE names an optional TOML file. Returns an error for
// unknown backends or drivers, malformed numbers, and the default database
// password in production.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.Host = envOrDefault("APP_HOST", cfg.Host)
	cfg.Port = envOrDefault("APP_PORT", cfg.Port)
	cfg.Env = envOrDefault("APP_ENV", cfg.Env)
	cfg.StoreBackend = envOrDefault("STORE_BACKEND", cfg.StoreBackend)

	cfg.SQLDriver = envOrDefault("SQL_DRIVER", cfg.SQLDriver)
	cfg.SQLitePath = envOrDefault("SQLITE_PATH", cfg.SQLitePath)
	cfg.DBHost = envOrDefault("POSTGRES_HOST", cfg.DBHost)
	cfg.DBPort = envOrDefault("POSTGRES_PORT", cfg.DBPort)
	cfg.DBUser = envOrDefault("POSTGRES_USER", cfg.DBUser)
	cfg.DBPassword = envOrDefault("POSTGRES_PASSWORD", cfg.DBPassword)
	cfg.DBName = envOrDefault("POSTGRES_DB", cfg.DBName)

	cfg.ValkeyHost = envOrDefault("VALKEY_HOST", cfg.ValkeyHost)
	cfg.ValkeyPort = envOrDefault("VALKEY_PORT", cfg.ValkeyPort)
	cfg.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", cfg.ValkeyPassword)
	cfg.BlobKeyPrefix = envOrDefault("BLOB_KEY_PREFIX", cfg.BlobKeyPrefix)

	var err error
	if cfg.ValkeyDB, err = envInt("VALKEY_DB", cfg.ValkeyDB); err != nil {
		return nil, err
	}
	if cfg.WriteRateLimit, err = envInt("WRITE_RATE_LIMIT", cfg.WriteRateLimit); err != nil {
		return nil, err
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		if cfg.TrustProxy, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("TRUST_PROXY: %w", err)
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	switch cfg.StoreBackend {
	case BackendBlob, BackendRelational, BackendMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND %q is not one of blob, relational, memory", cfg.StoreBackend)
	}
	if cfg.StoreBackend == BackendRelational && cfg.SQLDriver != "postgres" && cfg.SQLDriver != "sqlite" {
		return nil, fmt.Errorf("SQL_DRIVER %q is not one of postgres, sqlite", cfg.SQLDriver)
	}
	if cfg.WriteRateLimit < 0 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT must not be negative")
	}

	if cfg.Env == "production" && cfg.UsesPostgres() && cfg.DBPassword == "changeme" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
	}

	return cfg, nil
}

// UsesPostgres reports whether the configured backend talks to PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.StoreBackend == BackendRelational && c.SQLDriver == "postgres"
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer environment variable, returning fallback if unset.
func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
