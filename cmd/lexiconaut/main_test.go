package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupHistory(t *testing.T, items []domain.ResultItem) string {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "MODEL_PROVIDER", "HISTORY_BACKEND", "REDIS_ADDR", "SESSION_TTL", "MODEL_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), "results.json")
	t.Setenv("HISTORY_FILE", path)
	t.Setenv("LOG_LEVEL", "error")

	require.NoError(t, store.NewJSONFileStore(path, zap.NewNop()).Save(context.Background(), items))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHistoryCommands(t *testing.T) {
	path := setupHistory(t, []domain.ResultItem{
		{ID: "id-1", Name: "Throttlehound", Explanation: "hunts bursts"},
		{ID: "id-2", Name: "GovernorGo", Explanation: "governs", Starred: true},
	})

	out, err := run(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Throttlehound")
	assert.Contains(t, out, "GovernorGo")

	out, err = run(t, "history", "list", "--starred")
	require.NoError(t, err)
	assert.NotContains(t, out, "Throttlehound")
	assert.Contains(t, out, "GovernorGo")

	out, err = run(t, "history", "star", "id-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Toggled star on id-1")

	_, err = run(t, "history", "delete", "id-2")
	require.NoError(t, err)

	_, err = run(t, "history", "delete", "missing")
	require.Error(t, err)

	loaded, err := store.NewJSONFileStore(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "id-1", loaded[0].ID)
	assert.True(t, loaded[0].Starred)
}

func TestHistoryListEmpty(t *testing.T) {
	setupHistory(t, nil)

	out, err := run(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved names.")
}

func TestGenerateWithoutKeyFails(t *testing.T) {
	setupHistory(t, nil)

	_, err := run(t, "generate", "--language", "Go", "--topic", "rate limiting", "--purpose", "API throttling")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestPrintItemsTruncatesExplanation(t *testing.T) {
	var buf bytes.Buffer
	long := "word "
	for i := 0; i < 40; i++ {
		long += "word "
	}
	printItems(&buf, []domain.ResultItem{{ID: "x", Name: "Long", Explanation: long, Starred: true}})

	assert.Contains(t, buf.String(), "*")
	assert.Contains(t, buf.String(), "...")
}

func TestHistoryImport(t *testing.T) {
	path := setupHistory(t, []domain.ResultItem{{ID: "id-1", Name: "Throttlehound"}})

	legacy := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`[
		{"id": "old-1", "name": "Throttlehound", "description": "dup"},
		{"id": "old-2", "name": "Leashline", "description": "new"}
	]`), 0o644))

	out, err := run(t, "history", "import", legacy, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[dry run]")
	assert.Contains(t, out, "imported 1")

	_, err = run(t, "history", "import", legacy)
	require.NoError(t, err)

	loaded, err := store.NewJSONFileStore(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Leashline", loaded[1].Name)
	assert.Equal(t, "new", loaded[1].Explanation)
}
