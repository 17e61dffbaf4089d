package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr         string
	RequestTimeout   time.Duration
	ProviderDeadline time.Duration
	LogLevel         string
	LogFormat        string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterReferer string
	OpenRouterTitle   string
	GeminiAPIKey      string
	GeminiBaseURL     string

	TMDBAPIKey  string
	TMDBBaseURL string
	TMDBRegion  string

	RedisURL         string
	MetadataCacheTTL time.Duration
	CacheDisabled    bool

	EnhanceBatchSize int
	CORSOrigin       string
}

func LoadConfig() Config {
	// Best-effort: deployments without a .env file configure through the
	// environment directly.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":3001"),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		ProviderDeadline: time.Duration(getEnvInt("PROVIDER_DEADLINE_SECONDS", 8)) * time.Second,
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),

		OpenRouterAPIKey:  strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer: getEnv("OPENROUTER_REFERER", "https://triplefeature.app"),
		OpenRouterTitle:   getEnv("OPENROUTER_TITLE", "Triple Feature"),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"),

		TMDBAPIKey:  strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		TMDBBaseURL: getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBRegion:  strings.ToUpper(getEnv("TMDB_REGION", "US")),

		RedisURL:         getEnv("REDIS_URL", ""),
		MetadataCacheTTL: time.Duration(getEnvInt("METADATA_CACHE_TTL_HOURS", 24)) * time.Hour,
		CacheDisabled:    getEnvBool("METADATA_CACHE_DISABLED", false),

		EnhanceBatchSize: getEnvInt("ENHANCE_BATCH_SIZE", 3),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
