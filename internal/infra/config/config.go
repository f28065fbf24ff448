// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for arcana.
type Config struct {
	// HTTP
	HTTPHost string // HTTP_HOST, default: "0.0.0.0"
	HTTPPort int    // HTTP_PORT, default: 8080

	// Storage
	DatabasePath string // DATABASE_PATH, default: "arcana.db"

	// Logging
	LogLevel slog.Level // LOG_LEVEL, default: info

	// LLM
	LLMTimeout         time.Duration // LLM_TIMEOUT, default: 60s
	XAIAPIKey          string        // XAI_API_KEY
	XAIBaseURL         string        // XAI_BASE_URL, default: "https://api.x.ai/v1"
	XAIModel           string        // XAI_MODEL, default: "grok-beta"
	OpenAIAPIKey       string        // OPENAI_API_KEY
	PublicOpenAIAPIKey string        // NEXT_PUBLIC_OPENAI_API_KEY
	OpenAIBaseURL      string        // OPENAI_BASE_URL, default: "https://api.openai.com/v1"
	OpenAIModel        string        // OPENAI_MODEL, default: "gpt-4o"

	// Auth
	JWTSecret string        // JWT_SECRET, default: development-only secret
	JWTExpiry time.Duration // JWT_EXPIRY in hours, default: 24
}

const (
	envKeyHTTPHost           = "HTTP_HOST"
	envKeyHTTPPort           = "HTTP_PORT"
	envKeyDatabasePath       = "DATABASE_PATH"
	envKeyLogLevel           = "LOG_LEVEL"
	envKeyLLMTimeout         = "LLM_TIMEOUT"
	envKeyXAIAPIKey          = "XAI_API_KEY"
	envKeyXAIBaseURL         = "XAI_BASE_URL"
	envKeyXAIModel           = "XAI_MODEL"
	envKeyOpenAIAPIKey       = "OPENAI_API_KEY"
	envKeyPublicOpenAIAPIKey = "NEXT_PUBLIC_OPENAI_API_KEY"
	envKeyOpenAIBaseURL      = "OPENAI_BASE_URL"
	envKeyOpenAIModel        = "OPENAI_MODEL"
	envKeyJWTSecret          = "JWT_SECRET"
	envKeyJWTExpiry          = "JWT_EXPIRY"

	// DevJWTSecret is used when JWT_SECRET is unset. Never rely on it outside local runs.
	DevJWTSecret = "arcana-dev-secret-change-me-0123456789"
)

// Load reads configuration from environment variables, applying defaults for missing values.
// Unparseable numbers and durations fall back to their defaults.
func Load() Config {
	return Config{
		HTTPHost:           envOr(envKeyHTTPHost, "0.0.0.0"),
		HTTPPort:           envIntOr(envKeyHTTPPort, 8080),
		DatabasePath:       envOr(envKeyDatabasePath, "arcana.db"),
		LogLevel:           ParseLogLevel(os.Getenv(envKeyLogLevel)),
		LLMTimeout:         envDurationOr(envKeyLLMTimeout, 60*time.Second),
		XAIAPIKey:          os.Getenv(envKeyXAIAPIKey),
		XAIBaseURL:         envOr(envKeyXAIBaseURL, "https://api.x.ai/v1"),
		XAIModel:           envOr(envKeyXAIModel, "grok-beta"),
		OpenAIAPIKey:       os.Getenv(envKeyOpenAIAPIKey),
		PublicOpenAIAPIKey: os.Getenv(envKeyPublicOpenAIAPIKey),
		OpenAIBaseURL:      envOr(envKeyOpenAIBaseURL, "https://api.openai.com/v1"),
		OpenAIModel:        envOr(envKeyOpenAIModel, "gpt-4o"),
		JWTSecret:          envOr(envKeyJWTSecret, DevJWTSecret),
		JWTExpiry:          time.Duration(envIntOr(envKeyJWTExpiry, 24)) * time.Hour,
	}
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return c.HTTPHost + ":" + strconv.Itoa(c.HTTPPort)
}

// ParseLogLevel maps debug|info|warn|error (case-insensitive) to a slog level; anything else is info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envDurationOr accepts Go durations ("90s") or bare seconds ("90").
func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
