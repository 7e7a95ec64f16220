// Package availability checks generated names against a public package index.
package availability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/constants"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const serviceName = "availability"

// resultTitleSelector matches package titles on a pkg.go.dev search page.
const resultTitleSelector = ".SearchSnippet h2 a"

type Checker struct {
	httpClient *http.Client
	searchURL  string
	logger     *zap.Logger
}

// NewChecker builds a checker that appends the escaped name to searchURL.
func NewChecker(searchURL string, httpClient *http.Client, logger *zap.Logger) *Checker {
	if searchURL == "" {
		searchURL = constants.AvailabilityConfig.SearchURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.AvailabilityConfig.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		httpClient: httpClient,
		searchURL:  searchURL,
		logger:     logger,
	}
}

// Exists reports whether a package titled exactly name (case-insensitive)
// appears in the search results.
func (c *Checker) Exists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+url.QueryEscape(name), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Lexiconaut/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.NewServiceError("HTTP request failed", serviceName, "search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, errors.NewServiceError("search failed", serviceName, "search",
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return false, errors.NewServiceError("HTML parse failed", serviceName, "parse", err)
	}

	found := false
	doc.Find(resultTitleSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.EqualFold(packageTitle(sel.Text()), name) {
			found = true
			return false
		}
		return true
	})

	return found, nil
}

// Filter drops candidates whose name is already published. Lookup failures
// keep the candidate.
func (c *Checker) Filter(ctx context.Context, candidates []domain.NameCandidate) []domain.NameCandidate {
	kept := make([]domain.NameCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		exists, err := c.Exists(ctx, candidate.Name)
		if err != nil {
			c.logger.Warn("Availability lookup failed, keeping name",
				zap.String("name", candidate.Name),
				zap.Error(err),
			)
			kept = append(kept, candidate)
			continue
		}
		if exists {
			c.logger.Info("Dropping name that already exists", zap.String("name", candidate.Name))
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

// packageTitle turns "ratelimit (golang.org/x/time/rate)" into "ratelimit".
func packageTitle(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "("); i >= 0 {
		text = text[:i]
	}
	return strings.Join(strings.Fields(text), " ")
}
