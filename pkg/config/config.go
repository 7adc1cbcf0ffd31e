package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Search SearchConfig
	OTEL   OTELConfig
	Env    string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SearchConfig holds search engine tuning parameters
type SearchConfig struct {
	// BusinessTimeZone is the fixed zone all opening-hours evaluation
	// happens in, independent of server or client locale.
	BusinessTimeZone string

	// MaxScan bounds the candidate window fetched for open-now
	// filtering. Totals on that path are approximate above this cap.
	MaxScan int64

	DefaultPageSize    int64
	DefaultMaxDistance float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DB", "vet-directory"),
			Collection: getEnv("MONGO_COLLECTION", "vet-places"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Search: SearchConfig{
			BusinessTimeZone:   getEnv("BUSINESS_TIMEZONE", "Europe/Berlin"),
			MaxScan:            int64(getEnvAsInt("SEARCH_MAX_SCAN", 500)),
			DefaultPageSize:    int64(getEnvAsInt("SEARCH_DEFAULT_PAGE_SIZE", 20)),
			DefaultMaxDistance: getEnvAsFloat("SEARCH_DEFAULT_MAX_DISTANCE_METERS", 10000),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "vet-directory"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}

	if cfg.Search.MaxScan <= 0 {
		return nil, fmt.Errorf("SEARCH_MAX_SCAN must be positive, got %d", cfg.Search.MaxScan)
	}
	if cfg.Search.DefaultPageSize <= 0 {
		return nil, fmt.Errorf("SEARCH_DEFAULT_PAGE_SIZE must be positive, got %d", cfg.Search.DefaultPageSize)
	}

	return cfg, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
