package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	HistoryBackendFile     = "file"
	HistoryBackendPostgres = "postgres"
)

type Config struct {
	Model        ModelConfig
	History      HistoryConfig
	Session      SessionConfig
	Availability AvailabilityConfig
	Server       ServerConfig
	Logging      LoggingConfig
}

type ModelConfig struct {
	Provider       string        `env:"MODEL_PROVIDER"        env-default:"gemini"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL"          env-default:"gemini-2.5-flash"`
	OpenAIModel    string        `env:"OPENAI_MODEL"          env-default:"gpt-4o-mini"`
	EnableFallback bool          `env:"MODEL_ENABLE_FALLBACK" env-default:"false"`
	Timeout        time.Duration `env:"MODEL_TIMEOUT"         env-default:"0s"`
}

type HistoryConfig struct {
	Backend     string `env:"HISTORY_BACKEND" env-default:"file"`
	File        string `env:"HISTORY_FILE"    env-default:"history/results.json"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

type SessionConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"    env-default:"0"`
	TTL           time.Duration `env:"SESSION_TTL" env-default:"24h"`
}

type AvailabilityConfig struct {
	Enabled   bool   `env:"AVAILABILITY_CHECK"      env-default:"false"`
	SearchURL string `env:"AVAILABILITY_SEARCH_URL" env-default:"https://pkg.go.dev/search?q="`
}

type ServerConfig struct {
	Addr          string `env:"HTTP_ADDR"      env-default:":8501"`
	SecureCookies bool   `env:"SECURE_COOKIES" env-default:"false"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
	File  string `env:"LOG_FILE"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))
	c.Model.GeminiAPIKey = strings.TrimSpace(c.Model.GeminiAPIKey)
	c.Model.OpenAIAPIKey = strings.TrimSpace(c.Model.OpenAIAPIKey)
}

// Validate rejects settings the app cannot start with. Missing API keys are
// allowed because the UI can supply one per request.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("MODEL_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.Model.Provider)
	}
	if c.Model.Timeout < 0 {
		return fmt.Errorf("MODEL_TIMEOUT must not be negative")
	}

	switch c.History.Backend {
	case HistoryBackendFile:
		if strings.TrimSpace(c.History.File) == "" {
			return fmt.Errorf("HISTORY_FILE is required for the file backend")
		}
	case HistoryBackendPostgres:
		if strings.TrimSpace(c.History.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be %q or %q, got %q", HistoryBackendFile, HistoryBackendPostgres, c.History.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Availability.Enabled && strings.TrimSpace(c.Availability.SearchURL) == "" {
		return fmt.Errorf("AVAILABILITY_SEARCH_URL is required when AVAILABILITY_CHECK is on")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	return nil
}

// HasDefaultAPIKey reports whether the selected provider has a configured key.
func (c *Config) HasDefaultAPIKey() bool {
	if c.Model.Provider == ProviderOpenAI {
		return c.Model.OpenAIAPIKey != ""
	}
	return c.Model.GeminiAPIKey != ""
}
