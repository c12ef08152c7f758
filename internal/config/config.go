// Package config reads service configuration from environment variables
// with local-development defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the service needs at startup. It is built once
// in main and passed explicitly into constructors.
type Config struct {
	HTTP struct {
		Addr string
	}

	// DBEnabled / RedisEnabled switch the corresponding backend to the
	// in-memory implementation, for plain `go run` without containers.
	DBEnabled bool
	Database  DatabaseConfig

	RedisEnabled bool
	Redis        struct {
		Addr     string
		Password string
		DB       int
	}

	// LockWait bounds how long a booking waits for the per-room slot
	// before failing with the retryable busy error.
	LockWait time.Duration

	Log struct {
		Format string
	}
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Load builds a Config from the environment.
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":" + getEnv("PORT", "8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.DBName = getEnv("DB_NAME", "floorplan")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.LockWait = parseDuration(getEnv("BOOKING_LOCK_WAIT", "250ms"), 250*time.Millisecond)
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}
