package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Merchant behavior knobs
// (rotation size, lifetime, cooldown) live in the merchant_settings table,
// not here; this covers process-level concerns only.
type Config struct {
	Port       int
	LogLevel   string
	LogFormat  string
	APIKey     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// RotationRefreshInterval is how often the scheduler asks the rotation
	// manager to ensure an active rotation exists.
	RotationRefreshInterval time.Duration

	WorkerCount     int
	WorkerQueueSize int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		APIKey:     getEnv("API_KEY", ""),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "merchant"),
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	refreshMinutes, err := getEnvInt("ROTATION_REFRESH_MINUTES", DefaultRotationRefreshMinutes)
	if err != nil {
		return nil, err
	}
	if refreshMinutes <= 0 {
		return nil, fmt.Errorf("ROTATION_REFRESH_MINUTES must be positive, got %d", refreshMinutes)
	}
	cfg.RotationRefreshInterval = time.Duration(refreshMinutes) * time.Minute

	cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", DefaultWorkerCount)
	if err != nil {
		return nil, err
	}
	cfg.WorkerQueueSize, err = getEnvInt("WORKER_QUEUE_SIZE", DefaultWorkerQueueSize)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
