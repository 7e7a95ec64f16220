package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownRenderer(t *testing.T) {
	m := NewMarkdownRenderer()

	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			in:       "A *nimble* limiter with **teeth**",
			contains: []string{"<em>nimble</em>", "<strong>teeth</strong>"},
		},
		{
			name:     "script stripped",
			in:       "Safe <script>alert('x')</script> text",
			contains: []string{"Safe"},
			excludes: []string{"<script"},
		},
		{
			name:     "links get nofollow",
			in:       "See [docs](https://example.com)",
			contains: []string{`href="https://example.com"`, `rel="nofollow`},
		},
		{
			name:     "javascript urls dropped",
			in:       "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(m.Render(tt.in))
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}

	assert.Empty(t, m.Render("   "))
}
