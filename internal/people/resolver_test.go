package people

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brieflab/daybrief/internal/search"
)

// fakeProvider returns queued result sets in call order and records the
// queries it received.
type fakeProvider struct {
	results [][]search.Candidate
	errs    []error
	queries []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, query string, _ int) ([]search.Candidate, error) {
	call := len(f.queries)
	f.queries = append(f.queries, query)
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.results) {
		return f.results[call], nil
	}
	return nil, nil
}

func newTestResolver(provider search.Provider, opts ResolverOptions) *Resolver {
	return NewResolver(provider, NewCache(time.Hour), opts,
		WithResolverLogger(slog.New(slog.DiscardHandler)))
}

func acmeHint() Hint {
	return Hint{Name: "Jane Smith", Email: "jane@acme.com", Domain: "acme.com", Company: "Acme"}
}

func TestResolver_HighConfidenceSuppressesMedium(t *testing.T) {
	// Two anchors lift a candidate to 0.9; no anchors leave 0.5; a
	// negative keyword sinks the third to 0.2.
	provider := &fakeProvider{results: [][]search.Candidate{{
		{Title: "Jane Smith joins Acme", URL: "https://acme.com/news/jane", Snippet: "acme.com announcement"},
		{Title: "A Jane Smith somewhere", URL: "https://other.example.com/a", Snippet: "unrelated"},
		{Title: "Jane Smith obituary", URL: "https://other.example.com/b", Snippet: "memorial service"},
	}}}

	got := newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), acmeHint())

	require.Len(t, got, 1, "medium candidates must not surface next to a high one")
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
	assert.True(t, got[0].Accepted)
	assert.ElementsMatch(t, []string{"acme.com", "Acme"}, got[0].MatchedAnchors)
}

func TestResolver_MediumSurfacesOnlyWhenEnabled(t *testing.T) {
	// No company on the hint, so the domain is the only anchor and a
	// single match lands in the medium band.
	hint := Hint{Name: "Jane Smith", Email: "jane@acme.com", Domain: "acme.com"}
	results := [][]search.Candidate{{
		{Title: "Jane Smith profile", URL: "https://acme.com/team/jane", Snippet: ""},
		{Title: "Some Jane Smith", URL: "https://blog.example.com/jane", Snippet: "obituary notice"},
	}}

	t.Run("enabled", func(t *testing.T) {
		provider := &fakeProvider{results: results}
		got := newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), hint)

		// One anchor makes 0.7: medium band. The negative-keyword hit
		// lands at 0.2 and is rejected outright.
		require.Len(t, got, 1)
		assert.InDelta(t, 0.7, got[0].Score, 1e-9)
		assert.True(t, got[0].Accepted)
	})

	t.Run("disabled", func(t *testing.T) {
		opts := DefaultResolverOptions()
		opts.ShowMedium = false
		provider := &fakeProvider{results: results}

		got := newTestResolver(provider, opts).Resolve(t.Context(), hint)
		assert.Empty(t, got)
	})
}

func TestResolver_PassBSkippedAfterHighConfidencePassA(t *testing.T) {
	provider := &fakeProvider{results: [][]search.Candidate{{
		{Title: "Jane Smith leads Acme deal", URL: "https://acme.com/deal", Snippet: "acme.com"},
	}}}

	newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), acmeHint())

	require.Len(t, provider.queries, 1, "pass B should not run after a high-confidence pass A hit")
	assert.Equal(t, `site:acme.com "Jane Smith"`, provider.queries[0])
}

func TestResolver_PassBRunsWhenPassAFindsNothing(t *testing.T) {
	provider := &fakeProvider{results: [][]search.Candidate{
		nil,
		{{Title: "Jane Smith of Acme", URL: "https://news.example.com/jane", Snippet: "acme.com coverage"}},
	}}

	got := newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), acmeHint())

	require.Len(t, provider.queries, 2)
	assert.Equal(t, `"Jane Smith" "acme.com" "Acme"`, provider.queries[1])
	require.Len(t, got, 1)
	assert.Equal(t, SourceName, got[0].Source)
}

func TestResolver_GenericDomainSkipsSitePass(t *testing.T) {
	provider := &fakeProvider{}
	hint := Hint{Name: "Jane Smith", Email: "jane@gmail.com", Domain: "gmail.com"}

	newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), hint)

	require.Len(t, provider.queries, 1, "only the name pass should run for consumer domains")
	assert.Equal(t, `"Jane Smith"`, provider.queries[0])
}

func TestResolver_DeduplicatesByNormalizedURL(t *testing.T) {
	// Domain plus a co-attendee domain as anchors; the pass B duplicate
	// matches both and must win the collapse.
	hint := Hint{
		Name:              "Jane Smith",
		Email:             "jane@acme.com",
		Domain:            "acme.com",
		CoAttendeeDomains: []string{"lawfirm.com"},
	}
	provider := &fakeProvider{results: [][]search.Candidate{
		{{Title: "Jane at Acme", URL: "https://acme.com/news/jane?utm_source=x", Snippet: ""}},
		{{Title: "Jane at Acme", URL: "https://ACME.com/news/jane#top", Snippet: "with lawfirm.com"}},
	}}

	got := newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), hint)

	require.Len(t, got, 1, "query and fragment variants of one URL must collapse")
	assert.InDelta(t, 0.9, got[0].Score, 1e-9, "the higher-scoring duplicate wins")
}

func TestResolver_CapsAcceptedResults(t *testing.T) {
	provider := &fakeProvider{results: [][]search.Candidate{{
		{Title: "One", URL: "https://acme.com/1", Snippet: "acme.com Acme"},
		{Title: "Two", URL: "https://acme.com/2", Snippet: "acme.com Acme"},
		{Title: "Three", URL: "https://acme.com/3", Snippet: "acme.com Acme"},
		{Title: "Four", URL: "https://acme.com/4", Snippet: "acme.com Acme"},
	}}}

	got := newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), acmeHint())
	assert.Len(t, got, DefaultMaxResults)
}

func TestResolver_ProviderFailureDegradesToEmpty(t *testing.T) {
	provider := &fakeProvider{errs: []error{
		errors.New("timeout"),
		errors.New("timeout"),
	}}

	got := newTestResolver(provider, DefaultResolverOptions()).Resolve(t.Context(), acmeHint())

	assert.Empty(t, got, "provider failures must degrade, not propagate")
	assert.Len(t, provider.queries, 2, "a failed pass A must not stop pass B")
}

func TestResolver_CacheSuppressesRepeatSearches(t *testing.T) {
	provider := &fakeProvider{results: [][]search.Candidate{{
		{Title: "Jane Smith joins Acme", URL: "https://acme.com/news", Snippet: "acme.com"},
	}}}
	resolver := newTestResolver(provider, DefaultResolverOptions())

	first := resolver.Resolve(t.Context(), acmeHint())
	second := resolver.Resolve(t.Context(), acmeHint())

	assert.Equal(t, first, second)
	assert.Len(t, provider.queries, 1, "the second resolution must be served from cache")
}

func TestResolver_PerPersonNegativeKeywords(t *testing.T) {
	opts := DefaultResolverOptions()
	opts.NegativeKeywords = map[string][]string{
		"jane smith": {"actress"},
	}
	provider := &fakeProvider{results: [][]search.Candidate{{
		{Title: "Jane Smith the actress visits Acme set", URL: "https://acme.com/x", Snippet: "acme.com Acme"},
		{Title: "Jane Smith promoted at Acme", URL: "https://acme.com/y", Snippet: "acme.com Acme"},
	}}}

	got := newTestResolver(provider, opts).Resolve(t.Context(), acmeHint())

	require.Len(t, got, 1)
	assert.Equal(t, "https://acme.com/y", got[0].URL)
	assert.Empty(t, got[0].NegativeSignals)
}

func TestResolver_ScoreClamping(t *testing.T) {
	r := newTestResolver(&fakeProvider{}, DefaultResolverOptions())

	high := r.score(search.Candidate{
		Title:   "acme.com Acme lawfirm.com rpck.com",
		URL:     "https://acme.com",
		Snippet: "acme.com",
	}, SourceSite, []string{"acme.com", "Acme", "lawfirm.com", "rpck.com"}, nil)
	assert.Equal(t, 1.0, high.Score)

	low := r.score(search.Candidate{
		Title: "obituary fraud lawsuit",
	}, SourceName, nil, globalNegativeKeywords)
	assert.Equal(t, 0.0, low.Score)
}
