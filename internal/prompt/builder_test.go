package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLibraryNamePrompt(t *testing.T) {
	pb := NewPromptBuilder()

	rendered, err := pb.Render(TemplateLibraryName, LibraryNameData{
		Language: "Go",
		Topic:    "rate limiting",
		Purpose:  "API throttling",
		Count:    3,
		Seed:     424242,
	})
	require.NoError(t, err)

	assert.Contains(t, rendered.Text, "It is a Go library that is used for API throttling.")
	assert.Contains(t, rendered.Text, "The topic of the library is rate limiting.")
	assert.Contains(t, rendered.Text, "come up with 3 names")
	assert.Contains(t, rendered.Text, "random seed for inspiration: 424242")
	assert.Contains(t, rendered.Text, `"explanation"`)
	assert.Contains(t, rendered.Text, "do not return any names that already exist")

	assert.InDelta(t, 0.7, rendered.Settings.Temperature, 1e-6)
	assert.Equal(t, 4096, rendered.Settings.MaxOutputTokens)
}

func TestRenderCachesTemplates(t *testing.T) {
	pb := NewPromptBuilder()

	_, err := pb.Render(TemplateLibraryName, LibraryNameData{Language: "Go", Topic: "t", Purpose: "p", Count: 1, Seed: 1})
	require.NoError(t, err)

	first, err := pb.getTemplate(TemplateLibraryName)
	require.NoError(t, err)
	second, err := pb.getTemplate(TemplateLibraryName)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := NewPromptBuilder().Render("missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load prompt template missing.yaml")
}

func TestRenderRejectsMissingFields(t *testing.T) {
	_, err := NewPromptBuilder().Render(TemplateLibraryName, map[string]any{"Language": "Go"})
	require.Error(t, err)
}
