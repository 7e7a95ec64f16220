package store

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"go.uber.org/zap"
)

const historyFileMode fs.FileMode = 0o644

// JSONFileStore keeps the history as an indented JSON array in one file.
// The mutex serializes load-modify-save cycles of concurrent HTTP handlers.
type JSONFileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewJSONFileStore(path string, logger *zap.Logger) *JSONFileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONFileStore{path: path, logger: logger}
}

func (s *JSONFileStore) Describe() string {
	return s.path
}

// Load returns the stored items. A missing, empty or corrupt file yields an
// empty history; corruption is logged.
func (s *JSONFileStore) Load(ctx context.Context) ([]domain.ResultItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONFileStore) Save(ctx context.Context, items []domain.ResultItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(items)
}

func (s *JSONFileStore) Append(ctx context.Context, items []domain.ResultItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(existing, items...))
}

func (s *JSONFileStore) ToggleStar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	if !toggle(items, id) {
		s.logger.Debug("Toggle star: item not found", zap.String("id", id))
	}
	return s.save(items)
}

func (s *JSONFileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items, found := remove(items, id)
	if !found {
		s.logger.Debug("Delete: item not found", zap.String("id", id))
	}
	return s.save(items)
}

func (s *JSONFileStore) load() ([]domain.ResultItem, error) {
	content, err := os.ReadFile(s.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []domain.ResultItem{}, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to read history", "load", s.path, err)
	}

	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return []domain.ResultItem{}, nil
	}

	var items []domain.ResultItem
	if err := json.Unmarshal(content, &items); err != nil {
		s.logger.Error("Error decoding history JSON, file might be corrupted",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []domain.ResultItem{}, nil
	}
	if items == nil {
		items = []domain.ResultItem{}
	}
	return items, nil
}

// save writes to a temp file in the same directory and renames it over the
// target, so a failed write never truncates the existing history.
func (s *JSONFileStore) save(items []domain.ResultItem) error {
	if items == nil {
		items = []domain.ResultItem{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return errors.NewStoreError("failed to encode history", "save", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStoreError("failed to create history directory", "save", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.NewStoreError("failed to create temp file", "save", s.path, err)
	}
	tmpName := tmp.Name()

	// CreateTemp opens with 0600.
	if err := tmp.Chmod(historyFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStoreError("failed to set history file mode", "save", s.path, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStoreError("failed to write history", "save", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStoreError("failed to write history", "save", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewStoreError("failed to replace history file", "save", s.path, err)
	}

	s.logger.Debug("History saved", zap.String("path", s.path), zap.Int("items", len(items)))
	return nil
}
