package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/config"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/prompt"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/service/ai"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/service/availability"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/service/namegen"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/session"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/store"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/web"
	"go.uber.org/zap"
)

// Container bundles assembled services for the CLI and the web server.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      store.HistoryStore
	Controller *session.Controller
	Sessions   session.SessionStore

	closers []func()
}

// Options tunes which infrastructure Build connects.
type Options struct {
	// WithSessions connects the session backend; the CLI does not need it.
	WithSessions bool
}

// Build assembles all services. Connections opened here are released by
// Close, or immediately when Build fails.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	historyStore, err := c.buildHistoryStore(ctx)
	if err != nil {
		return nil, err
	}
	c.Store = historyStore

	factory, err := c.buildGeneratorFactory(ctx)
	if err != nil {
		return nil, err
	}
	c.Controller = session.NewController(historyStore, factory, logger)

	if opts.WithSessions {
		sessions, err := c.buildSessionStore(ctx)
		if err != nil {
			return nil, err
		}
		c.Sessions = sessions
	}

	logger.Info("Services assembled",
		zap.String("history", historyStore.Describe()),
		zap.String("model_provider", cfg.Model.Provider),
		zap.Bool("model_fallback", cfg.Model.EnableFallback),
		zap.Bool("availability_check", cfg.Availability.Enabled),
	)
	return c, nil
}

func (c *Container) buildHistoryStore(ctx context.Context) (store.HistoryStore, error) {
	switch c.Config.History.Backend {
	case config.HistoryBackendPostgres:
		pg, err := store.NewPostgresStore(ctx, c.Config.History.PostgresDSN, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres history store: %w", err)
		}
		c.closers = append(c.closers, func() { _ = pg.Close() })
		return pg, nil
	default:
		return store.NewJSONFileStore(c.Config.History.File, c.Logger), nil
	}
}

func (c *Container) buildSessionStore(ctx context.Context) (session.SessionStore, error) {
	if c.Config.Session.RedisAddr == "" {
		c.Logger.Info("Using in-memory sessions")
		return session.NewMemorySessionStore(c.Config.Session.TTL), nil
	}

	redisStore, err := session.NewRedisSessionStore(ctx, session.RedisConfig{
		Addr:     c.Config.Session.RedisAddr,
		Password: c.Config.Session.RedisPassword,
		DB:       c.Config.Session.RedisDB,
	}, c.Config.Session.TTL, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis session store: %w", err)
	}
	c.closers = append(c.closers, func() { _ = redisStore.Close() })
	return redisStore, nil
}

// buildGeneratorFactory returns a factory that binds the name generator to
// either the configured key or a per-request override.
func (c *Container) buildGeneratorFactory(ctx context.Context) (session.GeneratorFactory, error) {
	modelCfg := ai.ModelManagerConfig{
		Provider:       c.Config.Model.Provider,
		GeminiAPIKey:   c.Config.Model.GeminiAPIKey,
		OpenAIAPIKey:   c.Config.Model.OpenAIAPIKey,
		GeminiModel:    c.Config.Model.GeminiModel,
		OpenAIModel:    c.Config.Model.OpenAIModel,
		EnableFallback: c.Config.Model.EnableFallback,
		Timeout:        c.Config.Model.Timeout,
	}

	var base *ai.ModelManager
	if c.Config.HasDefaultAPIKey() {
		manager, err := ai.NewModelManager(ctx, modelCfg, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create model manager: %w", err)
		}
		base = manager
	} else {
		c.Logger.Warn("No model API key configured; generation requires a per-request key",
			zap.String("provider", modelCfg.Provider))
	}

	genOpts := []namegen.Option{namegen.WithPromptBuilder(prompt.DefaultPromptBuilder())}
	if c.Config.Availability.Enabled {
		checker := availability.NewChecker(
			c.Config.Availability.SearchURL,
			&http.Client{Timeout: constants.AvailabilityConfig.Timeout},
			c.Logger,
		)
		genOpts = append(genOpts, namegen.WithAvailabilityFilter(checker))
	}

	logger := c.Logger
	return func(ctx context.Context, apiKey string) (session.NameGenerator, error) {
		manager := base
		switch {
		case apiKey != "" && base != nil:
			m, err := base.WithAPIKey(ctx, apiKey)
			if err != nil {
				return nil, err
			}
			manager = m
		case apiKey != "":
			overrideCfg := modelCfg
			if overrideCfg.Provider == ai.ProviderOpenAI {
				overrideCfg.OpenAIAPIKey = apiKey
			} else {
				overrideCfg.GeminiAPIKey = apiKey
			}
			m, err := ai.NewModelManager(ctx, overrideCfg, logger)
			if err != nil {
				if stderrors.Is(err, ai.ErrAPIKeyMissing) {
					return nil, session.ErrAPIKeyRequired
				}
				return nil, err
			}
			manager = m
		}

		if manager == nil {
			return nil, session.ErrAPIKeyRequired
		}
		return namegen.NewGenerator(manager, logger, genOpts...), nil
	}, nil
}

// NewWebServer builds the HTTP server over the assembled services.
func (c *Container) NewWebServer(addr string) (*web.Server, error) {
	if c.Sessions == nil {
		return nil, fmt.Errorf("session store not initialized")
	}
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	return web.NewServer(web.Config{
		Addr:          addr,
		SecureCookies: c.Config.Server.SecureCookies,
	}, c.Controller, c.Sessions, c.Logger)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
