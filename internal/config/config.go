package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is read once at startup from the environment.
type Config struct {
	HTTPAddr     string
	RedisConn    string
	SQLitePath   string
	JWTSecret    string
	OTLPEndpoint string
	LogLevel     string
	BoardWidth   int
	BoardHeight  int
	TableTTL     time.Duration
	WebDir       string
}

// Load reads the environment, applying defaults for unset variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		RedisConn:    os.Getenv("REDIS_CONNSTRING"),
		SQLitePath:   getEnv("SQLITE_PATH", "./master.db"),
		JWTSecret:    getEnv("JWT_SECRET", "my_super_secret_key"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:     getEnv("LOG_LEVEL", "debug"),
		WebDir:       getEnv("WEB_DIR", "./web"),
	}

	var errs []error
	var err error
	if cfg.BoardWidth, err = getInt("BOARD_WIDTH", 7); err != nil {
		errs = append(errs, err)
	}
	if cfg.BoardHeight, err = getInt("BOARD_HEIGHT", 6); err != nil {
		errs = append(errs, err)
	}
	if cfg.TableTTL, err = getDuration("TABLE_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.BoardWidth < 1 || cfg.BoardHeight < 1 {
		errs = append(errs, fmt.Errorf("board must be at least 1x1, got %dx%d", cfg.BoardWidth, cfg.BoardHeight))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
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

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
