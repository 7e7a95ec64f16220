package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/util"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/openai/openai-go/v3"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the model circuit breaker rejects calls.
var ErrCircuitOpen = stderrors.New("model service temporarily unavailable")

// ErrAPIKeyMissing is returned when the selected provider has no credential.
var ErrAPIKeyMissing = stderrors.New("model API key is not configured")

var (
	serverStatusPattern = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodePattern   = regexp.MustCompile(`"code":\s*(\d{3})`)
)

type ModelManagerConfig struct {
	Provider       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	GeminiModel    string
	OpenAIModel    string
	EnableFallback bool
	Timeout        time.Duration
}

// ModelManager routes prompts to the primary provider, optionally falls back
// to the secondary one, and guards both with a circuit breaker.
type ModelManager struct {
	cfg            ModelManagerConfig
	primary        Provider
	fallback       Provider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = constants.ModelDefaults.GeminiModel
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = constants.ModelDefaults.OpenAIModel
	}

	primary, err := buildProvider(ctx, cfg.Provider, cfg, logger)
	if err != nil {
		return nil, err
	}

	var fallback Provider
	if cfg.EnableFallback {
		secondary := ProviderOpenAI
		if cfg.Provider == ProviderOpenAI {
			secondary = ProviderGemini
		}
		fallback, err = buildProvider(ctx, secondary, cfg, logger)
		if err != nil {
			logger.Info("Model fallback disabled", zap.String("provider", secondary), zap.Error(err))
			fallback = nil
		} else {
			logger.Info("Model fallback enabled", zap.String("provider", fallback.Name()))
		}
	}

	return newModelManager(cfg, primary, fallback, logger), nil
}

func newModelManager(cfg ModelManagerConfig, primary, fallback Provider, logger *zap.Logger) *ModelManager {
	mm := &ModelManager{
		cfg:      cfg,
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)
	return mm
}

func buildProvider(ctx context.Context, name string, cfg ModelManagerConfig, logger *zap.Logger) (Provider, error) {
	switch name {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY", ErrAPIKeyMissing)
		}
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrAPIKeyMissing)
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger), nil
	default:
		return nil, errors.NewValidationError("unknown model provider", "provider", name)
	}
}

// WithAPIKey returns a manager whose primary provider authenticates with key.
// The fallback provider, if any, is shared.
func (mm *ModelManager) WithAPIKey(ctx context.Context, key string) (*ModelManager, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return mm, nil
	}

	cfg := mm.cfg
	if cfg.Provider == ProviderOpenAI {
		cfg.OpenAIAPIKey = key
	} else {
		cfg.GeminiAPIKey = key
	}

	primary, err := buildProvider(ctx, cfg.Provider, cfg, mm.logger)
	if err != nil {
		return nil, err
	}
	return newModelManager(cfg, primary, mm.fallback, mm.logger), nil
}

// GenerateText sends prompt to the primary provider. With fallback enabled a
// failed primary call is retried once on the secondary provider.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (*GenerateResult, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.Status()
		mm.logger.Error("Model service unavailable (circuit open)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		if status.NextRetryTime != nil {
			return nil, fmt.Errorf("%w, retry after %s", ErrCircuitOpen, status.NextRetryTime.Format("15:04:05"))
		}
		return nil, ErrCircuitOpen
	}

	if mm.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mm.cfg.Timeout)
		defer cancel()
	}

	result, primaryErr := mm.primary.Generate(ctx, prompt, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return &GenerateResult{
			Text:     result.Text,
			Metadata: GenerateMetadata{Provider: mm.primary.Name(), Model: result.Model},
		}, nil
	}
	mm.recordFailure(primaryErr)

	if mm.fallback == nil {
		return nil, errors.NewAPIError("model request failed", mm.primary.Name(), primaryErr)
	}

	mm.logger.Warn("Primary model failed, trying fallback",
		zap.String("primary", mm.primary.Name()),
		zap.String("fallback", mm.fallback.Name()),
		zap.Error(primaryErr),
	)

	fallbackOpts := &GenerateOptions{}
	if opts != nil {
		*fallbackOpts = *opts
	}
	// a model name chosen for the primary provider means nothing to the fallback
	fallbackOpts.Model = ""

	result, fallbackErr := mm.fallback.Generate(ctx, prompt, fallbackOpts)
	if fallbackErr != nil {
		mm.recordFailure(fallbackErr)
		return nil, errors.NewAPIError("model request failed", mm.fallback.Name(), fallbackErr)
	}

	mm.circuitBreaker.RecordSuccess()
	return &GenerateResult{
		Text: result.Text,
		Metadata: GenerateMetadata{
			Provider:     mm.fallback.Name(),
			Model:        result.Model,
			UsedFallback: true,
		},
	}, nil
}

func (mm *ModelManager) recordFailure(err error) {
	if !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	var primaryOK, fallbackOK bool
	var wg conc.WaitGroup
	wg.Go(func() {
		primaryOK = mm.primary.Ping(ctx)
	})
	if mm.fallback != nil {
		wg.Go(func() {
			fallbackOK = mm.fallback.Ping(ctx)
		})
	}
	wg.Wait()

	mm.logger.Info("Model health check",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
	)
	return primaryOK || fallbackOK
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// isServiceFailure reports errors that say the provider is down or
// overloaded, as opposed to a bad request or a bad key.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) || isRateLimitError(err) {
		return true
	}
	if code, ok := statusCode(err); ok {
		return code >= 500 && code < 600
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	return serverStatusPattern.MatchString(msg)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusCode(err); ok {
		return code == 429
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func statusCode(err error) (int, bool) {
	var openaiErr *openai.Error
	if stderrors.As(err, &openaiErr) {
		return openaiErr.StatusCode, true
	}
	if matches := geminiCodePattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code, true
		}
	}
	return 0, false
}
