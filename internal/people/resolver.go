package people

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/brieflab/daybrief/internal/instrumentation"
	"github.com/brieflab/daybrief/internal/logging"
	"github.com/brieflab/daybrief/internal/search"
)

// Scoring and acceptance defaults. The magnitudes are tunable operational
// parameters; the monotonic structure (anchors raise, negatives lower,
// clamp to [0, 1]) is not.
const (
	DefaultBaseScore       = 0.5
	DefaultAnchorBonus     = 0.2
	DefaultNegativePenalty = 0.3
	DefaultHighThreshold   = 0.75
	DefaultMediumThreshold = 0.5

	// DefaultMaxResults bounds the accepted candidates per person.
	DefaultMaxResults = 3

	// defaultPerQueryItems is how many raw results each search pass
	// requests.
	defaultPerQueryItems = 5
)

// globalNegativeKeywords lower confidence for any person. They mark the
// classic wrong-namesake result classes: death notices and court
// coverage about somebody else with the same name.
var globalNegativeKeywords = []string{
	"obituary", "death", "died", "funeral", "memorial",
	"arrest", "charged", "convicted", "sentenced",
	"scandal", "fraud", "lawsuit", "settlement",
}

// ResolverOptions tune scoring, acceptance and query behavior.
type ResolverOptions struct {
	BaseScore       float64
	AnchorBonus     float64
	NegativePenalty float64
	HighThreshold   float64
	MediumThreshold float64
	ShowMedium      bool
	MaxResults      int
	PerQueryItems   int

	// NegativeKeywords maps a lowercased person name to extra negative
	// keywords for that person, typically naming a more famous namesake.
	NegativeKeywords map[string][]string
}

// DefaultResolverOptions returns the standard tuning.
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		BaseScore:       DefaultBaseScore,
		AnchorBonus:     DefaultAnchorBonus,
		NegativePenalty: DefaultNegativePenalty,
		HighThreshold:   DefaultHighThreshold,
		MediumThreshold: DefaultMediumThreshold,
		ShowMedium:      true,
		MaxResults:      DefaultMaxResults,
		PerQueryItems:   defaultPerQueryItems,
	}
}

// Resolver finds public news results about a person using metadata-only
// search and deterministic confidence scoring. No learned component.
type Resolver struct {
	provider search.Provider
	cache    *Cache
	opts     ResolverOptions
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithResolverMetrics sets the metrics recorder.
func WithResolverMetrics(metrics *instrumentation.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = metrics }
}

// NewResolver creates a resolver backed by the given search provider and
// cache.
func NewResolver(provider search.Provider, cache *Cache, opts ResolverOptions, ropts ...ResolverOption) *Resolver {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.PerQueryItems <= 0 {
		opts.PerQueryItems = defaultPerQueryItems
	}
	r := &Resolver{
		provider: provider,
		cache:    cache,
		opts:     opts,
		logger:   slog.Default(),
	}
	for _, opt := range ropts {
		opt(r)
	}
	return r
}

// Resolve returns the accepted candidates for the hinted person, from
// cache when a live entry exists. Rejected candidates are discarded, not
// surfaced. Search provider failures degrade to an empty pass; they
// never propagate.
func (r *Resolver) Resolve(ctx context.Context, hint Hint) []ScoredCandidate {
	if cached, ok := r.cache.Get(hint.Name, hint.Domain); ok {
		r.metrics.RecordResolverCache(ctx, "hit")
		return cached
	}
	r.metrics.RecordResolverCache(ctx, "miss")

	anchors := hint.ConfidenceAnchors()
	negatives := r.negativesFor(hint)

	scored := r.scoreAll(r.searchPass(ctx, SourceSite, sitePassQuery(hint)), SourceSite, anchors, negatives)

	// Pass B only runs when pass A produced no high-confidence result.
	if !hasHighConfidence(scored, r.opts.HighThreshold) {
		scored = append(scored,
			r.scoreAll(r.searchPass(ctx, SourceName, namePassQuery(hint)), SourceName, anchors, negatives)...)
	}

	accepted := r.accept(dedupeByURL(scored))
	r.cache.Put(hint.Name, hint.Domain, accepted)

	r.logger.Debug("person resolved",
		"person", logging.AnonymizeEmail(hint.Email),
		"candidates", len(scored),
		"accepted", len(accepted))
	return accepted
}

// sitePassQuery restricts results to the person's organizational domain.
// Empty when the hint has no such domain.
func sitePassQuery(hint Hint) string {
	if !hint.HasDomain() {
		return ""
	}
	query := "site:" + hint.Domain
	if name := hint.SearchName(); name != "" {
		query += fmt.Sprintf(" %q", name)
	}
	return query
}

// namePassQuery combines the person's name with their domain and company,
// unrestricted. Empty when the hint has no usable name.
func namePassQuery(hint Hint) string {
	name := hint.SearchName()
	if name == "" {
		return ""
	}
	query := fmt.Sprintf("%q", name)
	if hint.HasDomain() {
		query += fmt.Sprintf(" %q", hint.Domain)
	}
	if hint.Company != "" && !strings.EqualFold(hint.Company, hint.Domain) {
		query += fmt.Sprintf(" %q", hint.Company)
	}
	return query
}

// searchPass executes one provider query. Failures are logged and
// degrade to no candidates from this pass.
func (r *Resolver) searchPass(ctx context.Context, pass, query string) []search.Candidate {
	if query == "" {
		return nil
	}

	started := time.Now()
	candidates, err := r.provider.Search(ctx, query, r.opts.PerQueryItems)
	if err != nil {
		r.metrics.RecordSearchQuery(ctx, r.provider.Name(), pass, logging.StatusError, time.Since(started))
		r.logger.Warn("search pass failed",
			logging.Provider(r.provider.Name()),
			"pass", pass,
			logging.Err(err))
		return nil
	}
	r.metrics.RecordSearchQuery(ctx, r.provider.Name(), pass, logging.StatusSuccess, time.Since(started))
	return candidates
}

func (r *Resolver) scoreAll(candidates []search.Candidate, source string, anchors, negatives []string) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, r.score(c, source, anchors, negatives))
	}
	return scored
}

// score computes a candidate's confidence from its title, snippet and
// URL: baseline, plus a bonus per matched anchor, minus a penalty per
// negative signal, clamped to [0, 1].
func (r *Resolver) score(c search.Candidate, source string, anchors, negatives []string) ScoredCandidate {
	text := strings.ToLower(c.Title + " " + c.Snippet + " " + c.URL)

	sc := ScoredCandidate{Candidate: c, Score: r.opts.BaseScore, Source: source}
	for _, anchor := range anchors {
		if anchor != "" && strings.Contains(text, strings.ToLower(anchor)) {
			sc.MatchedAnchors = append(sc.MatchedAnchors, anchor)
			sc.Score += r.opts.AnchorBonus
		}
	}
	for _, negative := range negatives {
		if negative != "" && strings.Contains(text, strings.ToLower(negative)) {
			sc.NegativeSignals = append(sc.NegativeSignals, negative)
			sc.Score -= r.opts.NegativePenalty
		}
	}
	sc.Score = min(1.0, max(0.0, sc.Score))
	return sc
}

// negativesFor combines the global negative keywords with any configured
// for this specific person.
func (r *Resolver) negativesFor(hint Hint) []string {
	negatives := globalNegativeKeywords
	if personal, ok := r.opts.NegativeKeywords[strings.ToLower(hint.NormalizedName())]; ok {
		negatives = append(append([]string{}, negatives...), personal...)
	}
	return negatives
}

func hasHighConfidence(candidates []ScoredCandidate, threshold float64) bool {
	for _, c := range candidates {
		if c.Score >= threshold {
			return true
		}
	}
	return false
}

// dedupeByURL collapses candidates sharing a normalized URL to the
// highest-scoring instance.
func dedupeByURL(candidates []ScoredCandidate) []ScoredCandidate {
	best := make(map[string]int, len(candidates))
	unique := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := normalizeURL(c.URL)
		if i, seen := best[key]; seen {
			if c.Score > unique[i].Score {
				unique[i] = c
			}
			continue
		}
		best[key] = len(unique)
		unique = append(unique, c)
	}
	return unique
}

// normalizeURL reduces a URL to scheme, host and path. Query strings and
// fragments carry tracking noise, not identity.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.Path
}

// accept applies the two-tier acceptance policy and returns at most
// MaxResults candidates, highest score first. Medium-band candidates
// surface only when no high-confidence candidate exists and the
// show-medium flag is on.
func (r *Resolver) accept(candidates []ScoredCandidate) []ScoredCandidate {
	haveHigh := hasHighConfidence(candidates, r.opts.HighThreshold)

	accepted := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		switch {
		case c.Score >= r.opts.HighThreshold:
			c.Accepted = true
		case !haveHigh && r.opts.ShowMedium && c.Score >= r.opts.MediumThreshold:
			c.Accepted = true
		default:
			continue
		}
		accepted = append(accepted, c)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})
	if len(accepted) > r.opts.MaxResults {
		accepted = accepted[:r.opts.MaxResults]
	}
	return accepted
}
