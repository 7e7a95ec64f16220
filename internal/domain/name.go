package domain

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// NameCandidate is a freshly generated name/explanation pair.
type NameCandidate struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// UnmarshalJSON accepts "description" as an alias of "explanation".
func (c *NameCandidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string `json:"name"`
		Explanation string `json:"explanation"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(raw.Name)
	c.Explanation = strings.TrimSpace(raw.Explanation)
	if c.Explanation == "" {
		c.Explanation = strings.TrimSpace(raw.Description)
	}
	return nil
}

// ResultItem is a candidate accepted into the working set or history.
type ResultItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Starred     bool   `json:"starred"`
}

func (r *ResultItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Explanation string `json:"explanation"`
		Description string `json:"description"`
		Starred     bool   `json:"starred"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = raw.ID
	r.Name = raw.Name
	r.Explanation = raw.Explanation
	if r.Explanation == "" {
		r.Explanation = raw.Description
	}
	r.Starred = raw.Starred
	return nil
}

// NewResultItem wraps a candidate with a fresh identifier.
func NewResultItem(candidate NameCandidate) ResultItem {
	return ResultItem{
		ID:          uuid.NewString(),
		Name:        candidate.Name,
		Explanation: candidate.Explanation,
	}
}

// WrapCandidates keeps at most limit candidates and wraps each one as an
// unstarred ResultItem. A non-positive limit keeps everything.
func WrapCandidates(candidates []NameCandidate, limit int) []ResultItem {
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	items := make([]ResultItem, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, NewResultItem(candidate))
	}
	return items
}

func FilterStarred(items []ResultItem) []ResultItem {
	starred := make([]ResultItem, 0, len(items))
	for _, item := range items {
		if item.Starred {
			starred = append(starred, item)
		}
	}
	return starred
}

// FindItem returns the index of the item with the given id, or -1.
func FindItem(items []ResultItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneItems copies a slice so callers can mutate it without aliasing state.
func CloneItems(items []ResultItem) []ResultItem {
	if items == nil {
		return nil
	}
	out := make([]ResultItem, len(items))
	copy(out, items)
	return out
}

// UniqueByName returns the items whose names are not in existing and not
// repeated earlier in items.
func UniqueByName(existing, items []ResultItem) []ResultItem {
	seen := make(map[string]struct{}, len(existing)+len(items))
	for _, item := range existing {
		seen[item.Name] = struct{}{}
	}

	unique := make([]ResultItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
