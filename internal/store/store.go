// Package store persists the name history.
package store

import (
	"context"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
)

// HistoryStore is an ordered, persisted sequence of result items. Every
// mutation is a full load-modify-save cycle.
type HistoryStore interface {
	Load(ctx context.Context) ([]domain.ResultItem, error)
	Save(ctx context.Context, items []domain.ResultItem) error
	Append(ctx context.Context, items []domain.ResultItem) error
	ToggleStar(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// Describe names the backing location for logs and UI messages.
	Describe() string
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// toggle flips the starred flag of the item with id. It reports whether an
// item matched.
func toggle(items []domain.ResultItem, id string) bool {
	idx := domain.FindItem(items, id)
	if idx < 0 {
		return false
	}
	items[idx].Starred = !items[idx].Starred
	return true
}

// remove drops the item with id. It reports whether an item matched.
func remove(items []domain.ResultItem, id string) ([]domain.ResultItem, bool) {
	idx := domain.FindItem(items, id)
	if idx < 0 {
		return items, false
	}
	return append(items[:idx], items[idx+1:]...), true
}
