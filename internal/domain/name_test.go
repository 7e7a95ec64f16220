package domain

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameCandidateAcceptsDescriptionAlias(t *testing.T) {
	var candidates []NameCandidate
	err := json.Unmarshal([]byte(`[
		{"name": "Throttlehound", "description": "hunts down excess requests"},
		{"name": " Leashline ", "explanation": "keeps traffic on a leash", "description": "ignored"}
	]`), &candidates)
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, NameCandidate{Name: "Throttlehound", Explanation: "hunts down excess requests"}, candidates[0])
	assert.Equal(t, NameCandidate{Name: "Leashline", Explanation: "keeps traffic on a leash"}, candidates[1])
}

func TestResultItemReadsLegacyDescriptionField(t *testing.T) {
	var item ResultItem
	err := json.Unmarshal([]byte(`{"starred": true, "description": "old schema", "name": "Codebra", "id": "abc"}`), &item)
	require.NoError(t, err)

	assert.Equal(t, ResultItem{ID: "abc", Name: "Codebra", Explanation: "old schema", Starred: true}, item)

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","name":"Codebra","explanation":"old schema","starred":true}`, string(out))
}

func TestWrapCandidatesLimitsAndAssignsFreshIDs(t *testing.T) {
	candidates := []NameCandidate{
		{Name: "Throttlehound", Explanation: "a"},
		{Name: "GovernorGo", Explanation: "b"},
		{Name: "Leashline", Explanation: "c"},
		{Name: "Extra", Explanation: "d"},
	}

	items := WrapCandidates(candidates, 3)
	require.Len(t, items, 3)

	seen := map[string]bool{}
	for i, item := range items {
		assert.Equal(t, candidates[i].Name, item.Name)
		assert.Equal(t, candidates[i].Explanation, item.Explanation)
		assert.False(t, item.Starred)
		assert.NotEmpty(t, item.ID)
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}

	assert.Len(t, WrapCandidates(candidates, 0), 4)
	assert.Len(t, WrapCandidates(candidates[:2], 5), 2)
}

func TestUniqueByNameSkipsHistoryAndBatchDuplicates(t *testing.T) {
	history := []ResultItem{{ID: "1", Name: "Foo"}}
	working := []ResultItem{
		{ID: "2", Name: "Foo"},
		{ID: "3", Name: "Bar"},
		{ID: "4", Name: "Bar"},
	}

	unique := UniqueByName(history, working)
	require.Len(t, unique, 1)
	assert.Equal(t, "3", unique[0].ID)
}

func TestFilterStarredAndFindItem(t *testing.T) {
	items := []ResultItem{
		{ID: "a", Name: "A", Starred: true},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C", Starred: true},
	}

	starred := FilterStarred(items)
	require.Len(t, starred, 2)
	assert.Equal(t, "a", starred[0].ID)
	assert.Equal(t, "c", starred[1].ID)

	assert.Equal(t, 1, FindItem(items, "b"))
	assert.Equal(t, -1, FindItem(items, "missing"))
}

func TestNameRequestValidate(t *testing.T) {
	valid := NameRequest{Language: "Go", Topic: "rate limiting", Purpose: "API throttling", Count: 3}
	require.NoError(t, valid.Validate())

	cases := map[string]NameRequest{
		"language": {Topic: "t", Purpose: "p", Count: 3},
		"topic":    {Language: "Go", Purpose: "p", Count: 3},
		"purpose":  {Language: "Go", Topic: "t", Count: 3},
		"count":    {Language: "Go", Topic: "t", Purpose: "p", Count: 11},
	}
	for field, req := range cases {
		err := req.Validate()
		var vErr *errors.ValidationError
		require.True(t, stderrors.As(err, &vErr), "expected validation error for %s", field)
		assert.Equal(t, field, vErr.Field)
	}
}

func TestNameRequestNormalizeTrimsFields(t *testing.T) {
	req := NameRequest{Language: "  Go ", Topic: "caching", Purpose: " speed ", Count: 3}.Normalize()

	assert.Equal(t, "Go", req.Language)
	assert.Equal(t, "speed", req.Purpose)
	assert.Equal(t, 3, req.Count)
}

func TestNameRequestZeroCountIsRejected(t *testing.T) {
	assert.Equal(t, 5, NewNameRequest().Count)

	req := NameRequest{Language: "Go", Topic: "t", Purpose: "p", Count: 0}.Normalize()
	assert.Zero(t, req.Count)

	var vErr *errors.ValidationError
	require.True(t, stderrors.As(req.Validate(), &vErr))
	assert.Equal(t, "count", vErr.Field)
}
