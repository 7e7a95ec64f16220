package ai

import "context"

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	PresetCreative ModelPreset = "creative"
	PresetPrecise  ModelPreset = "precise"
	PresetBalanced ModelPreset = "balanced"
)

// ModelConfig holds sampling settings shared by all providers.
type ModelConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int
	MaxOutputTokens  int
	ResponseMimeType string // "application/json" or "text/plain"
}

// GenerateMetadata describes which provider answered.
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

// GenerateOptions holds options for AI generation
type GenerateOptions struct {
	Model     string
	Preset    ModelPreset
	JSONMode  bool
	Overrides *ModelConfig
}

// GenerateResult is the raw text answer of one model call.
type GenerateResult struct {
	Text     string
	Metadata GenerateMetadata
}

// TextGenerator is the capability the name generator depends on: one prompt
// in, one text answer out.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (*GenerateResult, error)
}

// Provider is a single hosted model backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts *GenerateOptions) (ProviderResult, error)
	Ping(ctx context.Context) bool
}

type ProviderResult struct {
	Text  string
	Model string
}

// GetPresetConfig returns the configuration for a preset
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetCreative:
		return ModelConfig{
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 2048,
		}
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 1024,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.4,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 2048,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

// resolveConfig applies the preset and then any non-zero overrides.
func resolveConfig(opts *GenerateOptions) ModelConfig {
	if opts == nil {
		return GetPresetConfig(PresetBalanced)
	}

	config := GetPresetConfig(opts.Preset)
	if o := opts.Overrides; o != nil {
		if o.Temperature > 0 {
			config.Temperature = o.Temperature
		}
		if o.TopP > 0 {
			config.TopP = o.TopP
		}
		if o.TopK > 0 {
			config.TopK = o.TopK
		}
		if o.MaxOutputTokens > 0 {
			config.MaxOutputTokens = o.MaxOutputTokens
		}
	}
	if opts.JSONMode {
		config.ResponseMimeType = "application/json"
	}
	return config
}
