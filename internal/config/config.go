package config

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const insecureJWTSecret = "change-this-secret"

// ServerConfig holds the time-tracking backend settings, read from the
// environment. An empty MigrationsDir selects the embedded schema.
type ServerConfig struct {
	Host            string
	Port            string
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	CORSOrigins     []string
	MigrationsDir   string
	ShutdownTimeout time.Duration
	Release         bool
}

func LoadServer() ServerConfig {
	return ServerConfig{
		Host:            getEnv("HOST", ""),
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/focussync.db"),
		JWTSecret:       getEnv("JWT_SECRET", insecureJWTSecret),
		TokenTTL:        time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", ""),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		Release:         getEnv("GIN_MODE", "") == "release",
	}
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate refuses to run a release build with the placeholder signing key.
func (c ServerConfig) Validate() error {
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if c.Release && c.JWTSecret == insecureJWTSecret {
		return errors.New("JWT_SECRET must be set when GIN_MODE=release")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	items := make([]string, 0, strings.Count(value, ",")+1)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
