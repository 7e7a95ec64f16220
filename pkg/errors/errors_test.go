package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreErrorUnwrapsCause(t *testing.T) {
	err := NewStoreError("write failed", "save", "history/results.json", fs.ErrPermission)

	require.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, CodeStore, err.Code)
	assert.Equal(t, "save", err.Context["operation"])
	assert.Contains(t, err.Error(), "write failed")
}

func TestValidationErrorMatchesWithAs(t *testing.T) {
	var err error = NewValidationError("count must be between 1 and 10", "count", 42)

	var vErr *ValidationError
	require.True(t, stderrors.As(err, &vErr))
	assert.Equal(t, "count", vErr.Field)
	assert.Equal(t, 42, vErr.Value)
	assert.Equal(t, "count must be between 1 and 10", err.Error())
}

func TestAppErrorWithCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewAppError("generation failed", CodeAppError, nil).WithCause(cause)

	assert.Equal(t, "generation failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}
