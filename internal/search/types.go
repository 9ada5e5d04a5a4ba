package search

import (
	"context"
	"fmt"
)

// Candidate is one web result returned by a news search provider.
type Candidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider executes a single news search query.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Search returns at most maxItems candidates for the query. An empty
	// result is not an error.
	Search(ctx context.Context, query string, maxItems int) ([]Candidate, error)
}

// ProviderError reports a failed provider request, carrying the upstream
// status when one was received.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s search failed: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s search failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
