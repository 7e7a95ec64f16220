// Package session holds per-user application state and the controller that
// mutates it.
package session

import "github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"

// View identifies which list the UI renders.
type View string

const (
	ViewResults View = "results"
	ViewHistory View = "history"
	ViewStarred View = "starred"
)

// Scope says whether an item action targets the working results or the
// persisted history.
type Scope string

const (
	ScopeResults Scope = "results"
	ScopeHistory Scope = "history"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot message shown on the next render.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// State is everything one user session needs between requests. ViewHistory
// and ViewStarred are never both true.
type State struct {
	Results       []domain.ResultItem `json:"results"`
	History       []domain.ResultItem `json:"history"`
	HistoryLoaded bool                `json:"history_loaded"`
	ViewHistory   bool                `json:"view_history"`
	ViewStarred   bool                `json:"view_starred"`
	Flash         *Flash              `json:"flash,omitempty"`
	LastRequest   domain.NameRequest  `json:"last_request"`
}

// NewState returns an empty session with the default request form values.
func NewState() *State {
	return &State{
		Results:     []domain.ResultItem{},
		History:     []domain.ResultItem{},
		LastRequest: domain.NewNameRequest(),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Results = domain.CloneItems(s.Results)
	out.History = domain.CloneItems(s.History)
	if s.Flash != nil {
		flash := *s.Flash
		out.Flash = &flash
	}
	return &out
}

// CurrentView reports the list the UI should render.
func (s *State) CurrentView() View {
	switch {
	case s.ViewStarred:
		return ViewStarred
	case s.ViewHistory:
		return ViewHistory
	default:
		return ViewResults
	}
}

func (s *State) SetFlash(kind FlashKind, message string) {
	s.Flash = &Flash{Kind: kind, Message: message}
}

// TakeFlash returns the pending flash and clears it.
func (s *State) TakeFlash() *Flash {
	flash := s.Flash
	s.Flash = nil
	return flash
}
