package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogMode string

	// Database (optional, in-memory course repository when empty)
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	// Redis (optional, in-memory sessions and queue when empty)
	RedisURL       string
	RedisSessionDB int

	// JWT
	JWTSecret string

	// LLM
	LLMProvider           string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	GeminiAPIKey          string
	GeminiModel           string
	LLMTemperature        float64
	LLMMaxTokens          int
	LLMTimeoutSeconds     int
	LLMMaxRetries         int
	LLMConcurrentRequests int

	// Generation
	WorkerCount         int
	GenerationRateLimit int
	SessionTTLMinutes   int
	VideoEnrichment     bool
	MigrationsDir       string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		LogMode:               getEnvOrDefault("LOG_MODE", "development"),
		DatabaseURL:           getEnvOrDefault("DATABASE_URL", ""),
		DBMaxConns:            getEnvAsIntOrDefault("DB_MAX_CONNS", 10),
		DBMinConns:            getEnvAsIntOrDefault("DB_MIN_CONNS", 1),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		RedisSessionDB:        getEnvAsIntOrDefault("REDIS_SESSION_DB", -1),
		JWTSecret:             mustGetEnv("JWT_SECRET"),
		LLMProvider:           strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:          getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey:          getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTemperature:        getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:          getEnvAsIntOrDefault("LLM_MAX_TOKENS", 4000),
		LLMTimeoutSeconds:     getEnvAsIntOrDefault("LLM_TIMEOUT_SECONDS", 90),
		LLMMaxRetries:         getEnvAsIntOrDefault("LLM_MAX_RETRIES", 2),
		LLMConcurrentRequests: getEnvAsIntOrDefault("LLM_CONCURRENT_REQUESTS", 5),
		WorkerCount:           getEnvAsIntOrDefault("WORKER_COUNT", 2),
		GenerationRateLimit:   getEnvAsIntOrDefault("GENERATION_RATE_LIMIT_PER_MINUTE", 10),
		SessionTTLMinutes:     getEnvAsIntOrDefault("SESSION_TTL_MINUTES", 240),
		VideoEnrichment:       getEnvAsBoolOrDefault("VIDEO_ENRICHMENT", false),
		MigrationsDir:         getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

// LLMAPIKey returns the credential for the selected provider. Empty means the
// generation endpoints report a configuration error per request.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// LLMProviderName is the display name used in configuration errors.
func (c *Config) LLMProviderName() string {
	if c.LLMProvider == "gemini" {
		return "Gemini"
	}
	return "OpenAI"
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
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultVal
	}
}
