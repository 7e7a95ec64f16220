// Package namegen turns a library description into creative name candidates
// with a single model call.
package namegen

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/prompt"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/service/ai"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/util"
	"go.uber.org/zap"
)

// ErrMalformedResponse marks model output that is not a JSON array of name objects.
var ErrMalformedResponse = stderrors.New("malformed model response")

// AvailabilityFilter drops candidates whose names are already taken.
type AvailabilityFilter interface {
	Filter(ctx context.Context, candidates []domain.NameCandidate) []domain.NameCandidate
}

type Option func(*Generator)

// WithSeedSource replaces the random seed drawn for every prompt.
func WithSeedSource(seed func() int) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

func WithAvailabilityFilter(filter AvailabilityFilter) Option {
	return func(g *Generator) {
		g.availability = filter
	}
}

func WithPromptBuilder(builder *prompt.PromptBuilder) Option {
	return func(g *Generator) {
		g.prompts = builder
	}
}

type Generator struct {
	model        ai.TextGenerator
	prompts      *prompt.PromptBuilder
	availability AvailabilityFilter
	seed         func() int
	logger       *zap.Logger
}

func NewGenerator(model ai.TextGenerator, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		model:   model,
		prompts: prompt.DefaultPromptBuilder(),
		seed:    randomSeed,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the model for req.Count names. The model may return more or
// fewer than requested; callers slice the result.
func (g *Generator) Generate(ctx context.Context, req domain.NameRequest) ([]domain.NameCandidate, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	seed := g.seed()
	rendered, err := g.prompts.Render(prompt.TemplateLibraryName, prompt.LibraryNameData{
		Language: req.Language,
		Topic:    req.Topic,
		Purpose:  req.Purpose,
		Count:    req.Count,
		Seed:     seed,
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Generating library names",
		zap.String("language", req.Language),
		zap.String("topic", req.Topic),
		zap.Int("count", req.Count),
		zap.Int("seed", seed),
	)

	maxTokens := rendered.Settings.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = constants.ModelDefaults.MaxOutputTokens
	}
	temperature := rendered.Settings.Temperature
	if temperature <= 0 {
		temperature = constants.ModelDefaults.Temperature
	}

	result, err := g.model.GenerateText(ctx, rendered.Text, &ai.GenerateOptions{
		Preset:   ai.PresetCreative,
		JSONMode: true,
		Overrides: &ai.ModelConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return nil, err
	}

	candidates, err := ParseCandidates(result.Text)
	if err != nil {
		g.logger.Error("Failed to parse model response",
			zap.String("provider", result.Metadata.Provider),
			zap.String("response_preview", util.TruncateString(result.Text, 200)),
			zap.Error(err),
		)
		return nil, err
	}

	g.logger.Info("Library names generated",
		zap.String("provider", result.Metadata.Provider),
		zap.String("model", result.Metadata.Model),
		zap.Bool("used_fallback", result.Metadata.UsedFallback),
		zap.Int("returned", len(candidates)),
	)

	if g.availability != nil {
		candidates = g.availability.Filter(ctx, candidates)
	}

	return candidates, nil
}

// ParseCandidates decodes a JSON array of {name, explanation|description}
// objects, tolerating a surrounding code fence. Entries without a name are
// dropped.
func ParseCandidates(text string) ([]domain.NameCandidate, error) {
	cleaned := util.StripCodeFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	if !strings.HasPrefix(cleaned, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedResponse)
	}

	var raw []domain.NameCandidate
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	candidates := make([]domain.NameCandidate, 0, len(raw))
	for _, c := range raw {
		if c.Name == "" {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func randomSeed() int {
	return constants.Seed.Min + rand.IntN(constants.Seed.Max-constants.Seed.Min+1)
}
