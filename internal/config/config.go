package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// AI completion endpoint
	AIToken        string
	AIEndpoint     string
	AIModel        string
	AIMaxTokens    int
	AITemperature  float64
	AIMaxRetries   int
	AIRetryDelayMS int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		JWTSecret:   mustGetEnv("JWT_SECRET"),
		// Missing credential is fatal at startup, never retried.
		AIToken:        mustGetEnv("AI_API_TOKEN"),
		AIEndpoint:     getEnvOrDefault("AI_ENDPOINT", "https://api.github.com/ai"),
		AIModel:        getEnvOrDefault("AI_MODEL", "gpt-4o-mini"),
		AIMaxTokens:    getEnvAsIntOrDefault("AI_MAX_TOKENS", 1000),
		AITemperature:  getEnvAsFloatOrDefault("AI_TEMPERATURE", 0.7),
		AIMaxRetries:   getEnvAsIntOrDefault("AI_MAX_RETRIES", 3),
		AIRetryDelayMS: getEnvAsIntOrDefault("AI_RETRY_DELAY_MS", 1000),
		FrontendURL:    getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
