package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"MODEL_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "GEMINI_MODEL", "OPENAI_MODEL",
	"MODEL_ENABLE_FALLBACK", "MODEL_TIMEOUT", "HISTORY_BACKEND", "HISTORY_FILE", "POSTGRES_DSN",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SESSION_TTL", "AVAILABILITY_CHECK",
	"AVAILABILITY_SEARCH_URL", "HTTP_ADDR", "SECURE_COOKIES", "LOG_LEVEL", "LOG_FILE",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Model.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.GeminiModel)
	assert.False(t, cfg.Model.EnableFallback)
	assert.Zero(t, cfg.Model.Timeout)
	assert.Equal(t, HistoryBackendFile, cfg.History.Backend)
	assert.Equal(t, "history/results.json", cfg.History.File)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Empty(t, cfg.Session.RedisAddr)
	assert.False(t, cfg.Availability.Enabled)
	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.HasDefaultAPIKey())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", " sk-test ")
	t.Setenv("MODEL_TIMEOUT", "45s")
	t.Setenv("HISTORY_FILE", "/tmp/names.json")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, "sk-test", cfg.Model.OpenAIAPIKey)
	assert.True(t, cfg.HasDefaultAPIKey())
	assert.Equal(t, 45*time.Second, cfg.Model.Timeout)
	assert.Equal(t, "/tmp/names.json", cfg.History.File)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.Session.RedisAddr)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Model:   ModelConfig{Provider: ProviderGemini},
			History: HistoryConfig{Backend: HistoryBackendFile, File: "history/results.json"},
			Session: SessionConfig{TTL: time.Hour},
			Server:  ServerConfig{Addr: ":8501"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Model.Provider = "claude" }, wantErr: "MODEL_PROVIDER"},
		{name: "negative timeout", mutate: func(c *Config) { c.Model.Timeout = -time.Second }, wantErr: "MODEL_TIMEOUT"},
		{name: "unknown backend", mutate: func(c *Config) { c.History.Backend = "sqlite" }, wantErr: "HISTORY_BACKEND"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.History.Backend = HistoryBackendPostgres }, wantErr: "POSTGRES_DSN"},
		{name: "empty history file", mutate: func(c *Config) { c.History.File = " " }, wantErr: "HISTORY_FILE"},
		{name: "zero ttl", mutate: func(c *Config) { c.Session.TTL = 0 }, wantErr: "SESSION_TTL"},
		{
			name:    "availability without url",
			mutate:  func(c *Config) { c.Availability = AvailabilityConfig{Enabled: true} },
			wantErr: "AVAILABILITY_SEARCH_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
