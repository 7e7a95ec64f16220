package availability

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const searchPage = `<html><body>
<div class="SearchSnippet">
  <div class="SearchSnippet-headerContainer">
    <h2><a href="/github.com/acme/leashline">
      Leashline
      <span class="SearchSnippet-header-path">(github.com/acme/leashline)</span>
    </a></h2>
  </div>
</div>
<div class="SearchSnippet">
  <h2><a href="/golang.org/x/time/rate">rate (golang.org/x/time/rate)</a></h2>
</div>
</body></html>`

func newSearchServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, searchPage)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExistsMatchesPackageTitle(t *testing.T) {
	srv := newSearchServer(t)
	checker := NewChecker(srv.URL+"/search?q=", srv.Client(), zap.NewNop())

	exists, err := checker.Exists(context.Background(), "leashline")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = checker.Exists(context.Background(), "Throttlehound")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsReportsHTTPFailure(t *testing.T) {
	srv := newSearchServer(t)
	checker := NewChecker(srv.URL+"/search?q=", srv.Client(), zap.NewNop())

	_, err := checker.Exists(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	var svcErr *errors.ServiceError
	require.True(t, stderrors.As(err, &svcErr))
	assert.Equal(t, "availability", svcErr.Service)
	assert.Equal(t, "search", svcErr.Operation)
}

func TestFilterDropsTakenAndKeepsUnknown(t *testing.T) {
	srv := newSearchServer(t)
	checker := NewChecker(srv.URL+"/search?q=", srv.Client(), zap.NewNop())

	kept := checker.Filter(context.Background(), []domain.NameCandidate{
		{Name: "Leashline"},
		{Name: "Throttlehound"},
		{Name: "broken"},
		{Name: "rate"},
	})

	names := make([]string, 0, len(kept))
	for _, c := range kept {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Throttlehound", "broken"}, names)
}

func TestPackageTitle(t *testing.T) {
	assert.Equal(t, "rate", packageTitle(" rate (golang.org/x/time/rate)"))
	assert.Equal(t, "Leashline", packageTitle("\n   Leashline\n   (github.com/acme/leashline)"))
}
