package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// StubProvider returns fixed, deterministic results without any network
// access. It keeps development and tests working when no search API key
// is configured.
type StubProvider struct{}

// NewStubProvider creates a stub provider.
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// Name implements Provider.
func (p *StubProvider) Name() string { return "stub" }

// Search implements Provider. Results embed the query so callers can see
// what would have been searched.
func (p *StubProvider) Search(_ context.Context, query string, maxItems int) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" || maxItems <= 0 {
		return nil, nil
	}

	slug := url.PathEscape(strings.ToLower(strings.Join(strings.Fields(query), "-")))
	candidates := make([]Candidate, 0, maxItems)
	for i := 0; i < maxItems && i < 3; i++ {
		candidates = append(candidates, Candidate{
			Title:   fmt.Sprintf("Stub result %d for %s", i+1, query),
			URL:     fmt.Sprintf("https://news.example.com/%s/%d", slug, i+1),
			Snippet: fmt.Sprintf("Stub snippet %d about %s.", i+1, query),
		})
	}
	return candidates, nil
}
