package web

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/service/ai"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/service/namegen"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/session"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type itemView struct {
	ID              string
	Name            string
	ExplanationHTML template.HTML
	Starred         bool
}

type pageData struct {
	Request       domain.NameRequest
	CountMin      int
	CountMax      int
	View          session.View
	Scope         session.Scope
	Items         []itemView
	Flash         *session.Flash
	CanSave       bool
	HistoryCount  int
	StarredCount  int
	StoreLocation string
}

// withState runs fn on the caller's session under the per-session lock and
// persists the result.
func (s *Server) withState(w http.ResponseWriter, r *http.Request, fn func(st *session.State)) (*session.State, bool) {
	id := sessionIDFrom(r.Context())
	unlock := s.locks.Lock(id)
	defer unlock()

	st, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return nil, false
	}

	fn(st)

	if err := s.sessions.Save(r.Context(), id, st); err != nil {
		s.logger.Error("Failed to save session", zap.Error(err))
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return st, true
}

// mutate applies fn and redirects back to the page.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(st *session.State)) {
	if _, ok := s.withState(w, r, fn); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var data pageData
	_, ok := s.withState(w, r, func(st *session.State) {
		if err := s.controller.EnsureHistory(r.Context(), st); err != nil {
			s.logger.Error("Failed to load history", zap.Error(err))
			st.SetFlash(session.FlashError, userMessage(err))
		}
		data = s.buildPage(st)
	})
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) buildPage(st *session.State) pageData {
	items, view := s.controller.Visible(st)
	scope := session.ScopeResults
	if view != session.ViewResults {
		scope = session.ScopeHistory
	}

	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView{
			ID:              item.ID,
			Name:            item.Name,
			ExplanationHTML: s.markdown.Render(item.Explanation),
			Starred:         item.Starred,
		})
	}

	return pageData{
		Request:       st.LastRequest,
		CountMin:      constants.NameCount.Min,
		CountMax:      constants.NameCount.Max,
		View:          view,
		Scope:         scope,
		Items:         views,
		Flash:         st.TakeFlash(),
		CanSave:       view == session.ViewResults && len(items) > 0,
		HistoryCount:  len(st.History),
		StarredCount:  len(domain.FilterStarred(st.History)),
		StoreLocation: s.controller.StoreLocation(),
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := domain.NewNameRequest()
	req.Language = r.PostForm.Get("language")
	req.Topic = r.PostForm.Get("topic")
	req.Purpose = r.PostForm.Get("purpose")
	countErr := error(nil)
	if raw := strings.TrimSpace(r.PostForm.Get("count")); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			countErr = errors.NewValidationError("number of names must be a whole number", "count", raw)
		}
		req.Count = count
	}
	apiKey := r.PostForm.Get("api_key")

	s.mutate(w, r, func(st *session.State) {
		if countErr != nil {
			st.LastRequest = req.Normalize()
			st.SetFlash(session.FlashError, userMessage(countErr))
			return
		}
		items, err := s.controller.Generate(r.Context(), st, req, apiKey)
		if err != nil {
			msg, known := knownMessage(err)
			if !known {
				msg = "Error generating names: " + msg
			}
			st.SetFlash(session.FlashError, msg)
			return
		}
		st.SetFlash(session.FlashSuccess, fmt.Sprintf("Generated %d names.", len(items)))
	})
}

func (s *Server) handleShowHistory(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.controller.ShowHistory)
}

func (s *Server) handleShowStarred(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.controller.ShowStarred)
}

func (s *Server) handleShowResults(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.controller.ShowResults)
}

func (s *Server) handleToggleStar(w http.ResponseWriter, r *http.Request) {
	s.itemAction(w, r, s.controller.ToggleStar)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.itemAction(w, r, s.controller.Delete)
}

type itemActionFunc func(ctx context.Context, st *session.State, id string, scope session.Scope) error

func (s *Server) itemAction(w http.ResponseWriter, r *http.Request, action itemActionFunc) {
	id := chi.URLParam(r, "id")
	scopeValue := r.FormValue("scope")

	s.mutate(w, r, func(st *session.State) {
		scope, err := session.ParseScope(scopeValue)
		if err != nil {
			st.SetFlash(session.FlashError, userMessage(err))
			return
		}
		if scope == session.ScopeHistory {
			if err := s.controller.EnsureHistory(r.Context(), st); err != nil {
				st.SetFlash(session.FlashError, userMessage(err))
				return
			}
		}
		if err := action(r.Context(), st, id, scope); err != nil {
			s.logger.Warn("Item action failed", zap.String("id", id), zap.Error(err))
			st.SetFlash(session.FlashError, userMessage(err))
		}
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(st *session.State) {
		if len(st.Results) == 0 {
			st.SetFlash(session.FlashInfo, "There are no results to save.")
			return
		}
		appended, err := s.controller.Save(r.Context(), st)
		if err != nil {
			st.SetFlash(session.FlashError, "Could not save results: "+userMessage(err))
			return
		}
		if appended == 0 {
			st.SetFlash(session.FlashInfo, "All of these names are already in your history.")
			return
		}
		st.SetFlash(session.FlashSuccess,
			fmt.Sprintf("Results saved to %s! (%d new)", s.controller.StoreLocation(), appended))
	})
}

// userMessage turns an error into text suitable for the flash banner.
func userMessage(err error) string {
	msg, _ := knownMessage(err)
	return msg
}

// knownMessage reports whether err maps to a friendly message; otherwise it
// returns err's own text.
func knownMessage(err error) (string, bool) {
	var verr *errors.ValidationError
	switch {
	case stderrors.As(err, &verr):
		return verr.Message, true
	case stderrors.Is(err, session.ErrAPIKeyRequired), stderrors.Is(err, ai.ErrAPIKeyMissing):
		return "Please provide an API key to generate names.", true
	case stderrors.Is(err, namegen.ErrMalformedResponse):
		return "The model returned a response that could not be parsed. Please try again.", true
	case stderrors.Is(err, ai.ErrCircuitOpen):
		return "The model service is temporarily unavailable. Please try again in a moment.", true
	default:
		return err.Error(), false
	}
}
