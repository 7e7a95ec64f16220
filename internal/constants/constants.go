package constants

import "time"

var NameCount = struct {
	Min     int
	Max     int
	Default int
}{
	Min:     1,
	Max:     10,
	Default: 5,
}

var Seed = struct {
	Min int
	Max int
}{
	Min: 1,
	Max: 1_000_000,
}

var ModelDefaults = struct {
	GeminiModel     string
	OpenAIModel     string
	Temperature     float32
	MaxOutputTokens int

	// Thinking tokens count against MaxOutputTokens on Gemini 2.5 models.
	GeminiThinkingBudget     int32
	GeminiPingThinkingBudget int32
}{
	GeminiModel:              "gemini-2.5-flash",
	OpenAIModel:              "gpt-4o-mini",
	Temperature:              0.7,
	MaxOutputTokens:          4096,
	GeminiThinkingBudget:     1024,
	GeminiPingThinkingBudget: 128,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // consecutive failures before the circuit opens
	ResetTimeout:        30 * time.Second, // default wait before a retry is allowed
	RateLimitTimeout:    5 * time.Minute,  // wait after a 429
	HealthCheckInterval: 2 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var SessionConfig = struct {
	CookieName string
	KeyPrefix  string
	DefaultTTL time.Duration
}{
	CookieName: "lexiconaut_session",
	KeyPrefix:  "lexiconaut:session:",
	DefaultTTL: 24 * time.Hour,
}

var HTTPConfig = struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
}{
	ReadHeaderTimeout: 10 * time.Second,
	WriteTimeout:      3 * time.Minute, // generation is awaited inside the request
	IdleTimeout:       60 * time.Second,
	RequestTimeout:    2 * time.Minute,
}

var AvailabilityConfig = struct {
	SearchURL string
	Timeout   time.Duration
}{
	SearchURL: "https://pkg.go.dev/search?q=",
	Timeout:   10 * time.Second,
}
