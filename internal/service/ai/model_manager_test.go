package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name   string
	text   string
	err    error
	calls  int
	opts   []*GenerateOptions
	pingOK bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, _ string, opts *GenerateOptions) (ProviderResult, error) {
	f.calls++
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return ProviderResult{}, f.err
	}
	return ProviderResult{Text: f.text, Model: f.name + "-model"}, nil
}

func (f *fakeProvider) Ping(context.Context) bool { return f.pingOK }

func TestGenerateTextUsesPrimaryOnly(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", text: `[{"name":"Codebra"}]`}
	fallback := &fakeProvider{name: "OpenAI", text: "unused"}
	mm := newModelManager(ModelManagerConfig{}, primary, fallback, zap.NewNop())

	res, err := mm.GenerateText(context.Background(), "prompt", &GenerateOptions{Preset: PresetCreative})
	require.NoError(t, err)

	assert.Equal(t, `[{"name":"Codebra"}]`, res.Text)
	assert.Equal(t, GenerateMetadata{Provider: "Gemini", Model: "Gemini-model"}, res.Metadata)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)
}

func TestGenerateTextWithoutFallbackReturnsAPIError(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: fmt.Errorf("invalid argument")}
	mm := newModelManager(ModelManagerConfig{}, primary, nil, zap.NewNop())

	_, err := mm.GenerateText(context.Background(), "prompt", nil)
	require.Error(t, err)

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, "Gemini", apiErr.Provider)
	assert.Equal(t, 1, primary.calls)
}

func TestGenerateTextFallsBackWhenEnabled(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: fmt.Errorf("503 Service Unavailable")}
	fallback := &fakeProvider{name: "OpenAI", text: "[]"}
	mm := newModelManager(ModelManagerConfig{}, primary, fallback, zap.NewNop())

	res, err := mm.GenerateText(context.Background(), "prompt", &GenerateOptions{Model: "gemini-2.5-pro"})
	require.NoError(t, err)

	assert.True(t, res.Metadata.UsedFallback)
	assert.Equal(t, "OpenAI", res.Metadata.Provider)
	require.Len(t, fallback.opts, 1)
	assert.Empty(t, fallback.opts[0].Model, "primary model name must not leak into fallback call")
}

func TestGenerateTextOpensCircuitAfterServiceFailures(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: fmt.Errorf(`Error 503, {"code":503,"status":"UNAVAILABLE"}`)}
	mm := newModelManager(ModelManagerConfig{}, primary, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := mm.GenerateText(context.Background(), "prompt", nil)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := mm.GenerateText(context.Background(), "prompt", nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 3, primary.calls)

	mm.ResetCircuit()
	primary.err = nil
	primary.text = "[]"
	_, err = mm.GenerateText(context.Background(), "prompt", nil)
	require.NoError(t, err)
}

func TestClientErrorsDoNotTripCircuit(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: fmt.Errorf(`Error 400, {"code":400,"status":"INVALID_ARGUMENT"}`)}
	mm := newModelManager(ModelManagerConfig{}, primary, nil, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := mm.GenerateText(context.Background(), "prompt", nil)
		require.Error(t, err)
	}
	assert.Equal(t, 5, primary.calls)
	assert.Zero(t, mm.CircuitStatus().FailureCount)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isServiceFailure(context.DeadlineExceeded))
	assert.True(t, isServiceFailure(fmt.Errorf("request timeout")))
	assert.True(t, isRateLimitError(fmt.Errorf(`{"code":429,"status":"RESOURCE_EXHAUSTED"}`)))
	assert.False(t, isServiceFailure(fmt.Errorf(`{"code":401,"message":"API key not valid"}`)))
	assert.False(t, isServiceFailure(nil))
}

func TestResolveConfigAppliesOverrides(t *testing.T) {
	config := resolveConfig(&GenerateOptions{
		Preset:    PresetPrecise,
		JSONMode:  true,
		Overrides: &ModelConfig{Temperature: 0.7, MaxOutputTokens: 512},
	})

	assert.InDelta(t, 0.7, config.Temperature, 1e-6)
	assert.Equal(t, 512, config.MaxOutputTokens)
	assert.Equal(t, 20, config.TopK)
	assert.Equal(t, "application/json", config.ResponseMimeType)
}

func TestGeminiThinkingConfigOnlyForThinkingModels(t *testing.T) {
	cfg := geminiThinkingConfig("gemini-2.5-flash", 1024)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.ThinkingBudget)
	assert.Equal(t, int32(1024), *cfg.ThinkingBudget)

	assert.Nil(t, geminiThinkingConfig("gemini-2.0-flash", 1024))
}

func TestNewModelManagerRequiresPrimaryKey(t *testing.T) {
	_, err := NewModelManager(context.Background(), ModelManagerConfig{Provider: ProviderOpenAI}, zap.NewNop())
	require.ErrorIs(t, err, ErrAPIKeyMissing)

	_, err = NewModelManager(context.Background(), ModelManagerConfig{Provider: "claude", GeminiAPIKey: "k"}, zap.NewNop())
	var vErr *errors.ValidationError
	require.True(t, stderrors.As(err, &vErr))
}

func TestWithAPIKeySwapsPrimaryProvider(t *testing.T) {
	mm, err := NewModelManager(context.Background(), ModelManagerConfig{
		Provider:     ProviderOpenAI,
		OpenAIAPIKey: "sk-default",
	}, zap.NewNop())
	require.NoError(t, err)

	same, err := mm.WithAPIKey(context.Background(), "  ")
	require.NoError(t, err)
	assert.Same(t, mm, same)

	other, err := mm.WithAPIKey(context.Background(), "sk-override")
	require.NoError(t, err)
	assert.NotSame(t, mm, other)
	assert.Equal(t, "sk-override", other.cfg.OpenAIAPIKey)
	assert.Equal(t, "OpenAI", other.primary.Name())
}
