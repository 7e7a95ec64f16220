// Package web serves the browser UI.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

type Config struct {
	Addr string
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
}

type Server struct {
	cfg        Config
	controller *session.Controller
	sessions   session.SessionStore
	locks      *session.KeyedMutex
	page       *template.Template
	markdown   *MarkdownRenderer
	logger     *zap.Logger
	httpServer *http.Server
}

func NewServer(cfg Config, controller *session.Controller, sessions session.SessionStore, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	page, err := template.New("index.html.tmpl").Funcs(template.FuncMap{
		"isError": func(f *session.Flash) bool { return f != nil && f.Kind == session.FlashError },
	}).ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		controller: controller,
		sessions:   sessions,
		locks:      session.NewKeyedMutex(),
		page:       page,
		markdown:   NewMarkdownRenderer(),
		logger:     logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: constants.HTTPConfig.ReadHeaderTimeout,
		WriteTimeout:      constants.HTTPConfig.WriteTimeout,
		IdleTimeout:       constants.HTTPConfig.IdleTimeout,
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(constants.HTTPConfig.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(sessionCookie(s.cfg.SecureCookies))

		r.Get("/", s.handleIndex)
		r.Post("/generate", s.handleGenerate)
		r.Post("/view/history", s.handleShowHistory)
		r.Post("/view/starred", s.handleShowStarred)
		r.Post("/view/results", s.handleShowResults)
		r.Post("/items/{id}/star", s.handleToggleStar)
		r.Post("/items/{id}/delete", s.handleDelete)
		r.Post("/save", s.handleSave)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.controller.CheckHealth(r.Context()); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("history store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Web UI listening", zap.String("addr", s.cfg.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
