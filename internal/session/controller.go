package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/store"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"go.uber.org/zap"
)

// ErrAPIKeyRequired is returned when no API key is configured and the
// request did not supply one.
var ErrAPIKeyRequired = stderrors.New("an API key is required to generate names")

// NameGenerator produces candidates for a request with one model call.
type NameGenerator interface {
	Generate(ctx context.Context, req domain.NameRequest) ([]domain.NameCandidate, error)
}

// GeneratorFactory returns a generator bound to apiKey, or to the configured
// key when apiKey is empty.
type GeneratorFactory func(ctx context.Context, apiKey string) (NameGenerator, error)

// Controller applies user actions to a State.
type Controller struct {
	store        store.HistoryStore
	newGenerator GeneratorFactory
	logger       *zap.Logger
}

func NewController(historyStore store.HistoryStore, newGenerator GeneratorFactory, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:        historyStore,
		newGenerator: newGenerator,
		logger:       logger,
	}
}

// StoreLocation names the history backend for UI messages.
func (c *Controller) StoreLocation() string {
	return c.store.Describe()
}

// CheckHealth pings the history backend when it is a remote server.
func (c *Controller) CheckHealth(ctx context.Context) error {
	if pinger, ok := c.store.(store.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// EnsureHistory loads history from the store the first time it is needed.
func (c *Controller) EnsureHistory(ctx context.Context, st *State) error {
	if st.HistoryLoaded {
		return nil
	}
	return c.refreshHistory(ctx, st)
}

func (c *Controller) refreshHistory(ctx context.Context, st *State) error {
	items, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	st.History = items
	st.HistoryLoaded = true
	return nil
}

// Generate replaces the working results with a fresh batch of at most
// req.Count names. On failure the previous results stay in place.
func (c *Controller) Generate(ctx context.Context, st *State, req domain.NameRequest, apiKeyOverride string) ([]domain.ResultItem, error) {
	req = req.Normalize()
	st.LastRequest = req

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.newGenerator == nil {
		return nil, ErrAPIKeyRequired
	}

	generator, err := c.newGenerator(ctx, strings.TrimSpace(apiKeyOverride))
	if err != nil {
		return nil, err
	}

	candidates, err := generator.Generate(ctx, req)
	if err != nil {
		c.logger.Warn("Name generation failed",
			zap.String("language", req.Language),
			zap.String("topic", req.Topic),
			zap.Error(err),
		)
		return nil, err
	}

	items := domain.WrapCandidates(candidates, req.Count)
	if len(candidates) > len(items) {
		c.logger.Debug("Model returned more names than requested",
			zap.Int("requested", req.Count),
			zap.Int("returned", len(candidates)),
		)
	}

	st.Results = items
	st.ViewHistory = false
	st.ViewStarred = false

	c.logger.Info("Generated names",
		zap.String("language", req.Language),
		zap.String("topic", req.Topic),
		zap.Int("count", len(items)),
	)
	return domain.CloneItems(items), nil
}

func (c *Controller) ShowHistory(st *State) {
	st.ViewHistory = true
	st.ViewStarred = false
}

func (c *Controller) ShowStarred(st *State) {
	st.ViewStarred = true
	st.ViewHistory = false
}

func (c *Controller) ShowResults(st *State) {
	st.ViewHistory = false
	st.ViewStarred = false
}

// ToggleStar flips the starred flag of id. History changes are persisted and
// then re-read; working results change in memory only.
func (c *Controller) ToggleStar(ctx context.Context, st *State, id string, scope Scope) error {
	switch scope {
	case ScopeHistory:
		if err := c.store.ToggleStar(ctx, id); err != nil {
			return err
		}
		return c.refreshHistory(ctx, st)
	case ScopeResults:
		if idx := domain.FindItem(st.Results, id); idx >= 0 {
			st.Results[idx].Starred = !st.Results[idx].Starred
		}
		return nil
	default:
		return invalidScope(scope)
	}
}

// Delete removes id from history (persisted) or from the working results.
func (c *Controller) Delete(ctx context.Context, st *State, id string, scope Scope) error {
	switch scope {
	case ScopeHistory:
		if err := c.store.Delete(ctx, id); err != nil {
			return err
		}
		return c.refreshHistory(ctx, st)
	case ScopeResults:
		if idx := domain.FindItem(st.Results, id); idx >= 0 {
			results := domain.CloneItems(st.Results)
			st.Results = append(results[:idx], results[idx+1:]...)
		}
		return nil
	default:
		return invalidScope(scope)
	}
}

// Save appends the working results whose names are not yet in history and
// clears the working set. It returns how many items were appended. On
// failure the state is left unchanged.
func (c *Controller) Save(ctx context.Context, st *State) (int, error) {
	if len(st.Results) == 0 {
		return 0, nil
	}

	existing, err := c.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	unique := domain.UniqueByName(existing, st.Results)
	combined := make([]domain.ResultItem, 0, len(existing)+len(unique))
	combined = append(combined, existing...)
	combined = append(combined, unique...)

	if err := c.store.Save(ctx, combined); err != nil {
		c.logger.Error("Failed to save results to history",
			zap.String("location", c.store.Describe()),
			zap.Error(err),
		)
		return 0, err
	}

	c.logger.Info("Saved results to history",
		zap.Int("appended", len(unique)),
		zap.Int("skipped", len(st.Results)-len(unique)),
		zap.String("location", c.store.Describe()),
	)

	st.History = combined
	st.HistoryLoaded = true
	st.Results = []domain.ResultItem{}
	return len(unique), nil
}

// Visible returns the items the UI should show for the current view.
func (c *Controller) Visible(st *State) ([]domain.ResultItem, View) {
	view := st.CurrentView()
	switch view {
	case ViewStarred:
		return domain.FilterStarred(st.History), view
	case ViewHistory:
		return domain.CloneItems(st.History), view
	default:
		return domain.CloneItems(st.Results), view
	}
}

// ParseScope maps a form value to a Scope.
func ParseScope(value string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(value)))
	switch scope {
	case ScopeResults, ScopeHistory:
		return scope, nil
	default:
		return "", invalidScope(scope)
	}
}

func invalidScope(scope Scope) error {
	return errors.NewValidationError(fmt.Sprintf("unknown item scope %q", scope), "scope", string(scope))
}
