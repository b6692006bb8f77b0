package config

import (
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Backend API (types, coverage, slots, booking)
	APIBaseURL string
	APITimeout time.Duration

	// Address search provider (BAN-compatible geocoder)
	AddressAPIBaseURL string

	// Session cookie carrying the auth token
	TokenCookieName string

	// Optional Redis cache for address suggestions
	RedisAddr     string
	RedisPassword string
	SuggestionTTL time.Duration

	// Local stub server
	StubPort string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:3001/api/"),
		APITimeout:        getEnvAsDuration("API_TIMEOUT", 15*time.Second),
		AddressAPIBaseURL: getEnv("ADDRESS_API_BASE_URL", "https://api-adresse.data.gouv.fr"),
		TokenCookieName:   getEnv("TOKEN_COOKIE_NAME", "hch_token"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		SuggestionTTL:     getEnvAsDuration("SUGGESTION_CACHE_TTL", 10*time.Minute),
		StubPort:          getEnv("STUB_PORT", "3001"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
