package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver string
	DBPath   string
	DBDSN    string

	// JWT
	JWTSecret      string
	JWTExpiryHours int

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting
	RateLimitRequests int

	// Logging
	LogLevel string

	// Database
	DBQueryTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DBPath:             getEnv("DB_PATH", "./data/todonest.db"),
		DBDSN:              getEnv("DB_DSN", ""),
		JWTSecret:          getEnv("JWT_SECRET", "change-this-to-a-secure-random-string-in-production"),
		JWTExpiryHours:     getEnvAsInt("JWT_EXPIRY_HOURS", 168),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		RateLimitRequests:  getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBQueryTimeout:     time.Duration(getEnvAsInt("DB_QUERY_TIMEOUT_SECONDS", 5)) * time.Second,
	}

	// Validate critical configuration
	if cfg.Env == "production" && cfg.JWTSecret == "change-this-to-a-secure-random-string-in-production" {
		logger := MustInitLogger(cfg.Env, cfg.LogLevel)
		logger.Fatal("JWT_SECRET must be set in production environment")
	}

	return cfg
}

// JWTExpiry returns the JWT expiry duration
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Silently use default - logger not available yet during config load
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated values
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}
