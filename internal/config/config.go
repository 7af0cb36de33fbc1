package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	LogLevel  string
	LogFormat string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RatingShowAfter    time.Duration
	RatingHideAfter    time.Duration
	SessionIdleTimeout time.Duration

	APIRateLimit float64
	APIRateBurst int
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "./ayudame.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "ayudame"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	var err error
	if cfg.RatingShowAfter, err = getDuration("RATING_SHOW_AFTER", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RatingHideAfter, err = getDuration("RATING_HIDE_AFTER", 25*time.Second); err != nil {
		return nil, err
	}
	if cfg.RatingShowAfter <= 0 || cfg.RatingHideAfter <= cfg.RatingShowAfter {
		return nil, fmt.Errorf("RATING_SHOW_AFTER/RATING_HIDE_AFTER: need 0 < show (%s) < hide (%s)",
			cfg.RatingShowAfter, cfg.RatingHideAfter)
	}
	if cfg.SessionIdleTimeout, err = getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.APIRateLimit, err = getFloat("API_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.APIRateBurst, err = getInt("API_RATE_BURST", 40); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}
	return cfg, nil
}

// PostgresDSN is the connection string used when DBDriver is "postgres".
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
