package domain

import (
	"strings"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
)

// NameRequest describes one generation action.
type NameRequest struct {
	Language string
	Topic    string
	Purpose  string
	Count    int
}

// NewNameRequest returns an empty request with the default count.
func NewNameRequest() NameRequest {
	return NameRequest{Count: constants.NameCount.Default}
}

// Normalize trims the text fields. Count is left as given so that an
// explicit 0 still fails Validate.
func (r NameRequest) Normalize() NameRequest {
	r.Language = strings.TrimSpace(r.Language)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Purpose = strings.TrimSpace(r.Purpose)
	return r
}

func (r NameRequest) Validate() error {
	if strings.TrimSpace(r.Language) == "" {
		return errors.NewValidationError("programming language is required", "language", r.Language)
	}
	if strings.TrimSpace(r.Topic) == "" {
		return errors.NewValidationError("library topic is required", "topic", r.Topic)
	}
	if strings.TrimSpace(r.Purpose) == "" {
		return errors.NewValidationError("library purpose is required", "purpose", r.Purpose)
	}
	if r.Count < constants.NameCount.Min || r.Count > constants.NameCount.Max {
		return errors.NewValidationError("number of names must be between 1 and 10", "count", r.Count)
	}
	return nil
}
