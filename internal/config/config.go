package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration, loaded from environment variables.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisAddr          string
	JWTSecret          []byte
	QuestionServiceURL string
	UserServiceURL     string

	// Matched requests unconfirmed past this deadline are reverted.
	ConfirmTimeout time.Duration
	// Pending requests live this long before expiring.
	RequestTTL time.Duration
	// Requests whose scheduled starts differ by no more than this window
	// are considered compatible.
	StartWindow time.Duration
	// Cron spec for the expiry sweeper.
	SweepSchedule string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		JWTSecret:          []byte(os.Getenv("JWT_SECRET")),
		QuestionServiceURL: getEnvOrDefault("QUESTION_SERVICE_URL", "http://localhost:8081"),
		UserServiceURL:     getEnvOrDefault("USER_SERVICE_URL", "http://localhost:8082"),
		ConfirmTimeout:     time.Duration(getEnvInt("MATCH_CONFIRM_TIMEOUT_SEC", 30)) * time.Second,
		RequestTTL:         time.Duration(getEnvInt("MATCH_REQUEST_TTL_SEC", 600)) * time.Second,
		StartWindow:        time.Duration(getEnvInt("START_WINDOW_MIN", 15)) * time.Minute,
		SweepSchedule:      getEnvOrDefault("SWEEP_SCHEDULE", "@every 5s"),
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.ConfirmTimeout <= 0 {
		return errors.New("MATCH_CONFIRM_TIMEOUT_SEC must be positive")
	}
	if cfg.RequestTTL <= 0 {
		return errors.New("MATCH_REQUEST_TTL_SEC must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
