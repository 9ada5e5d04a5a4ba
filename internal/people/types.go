package people

import "github.com/brieflab/daybrief/internal/search"

// Candidate sources, named after the search pass that produced them.
const (
	SourceSite = "site"
	SourceName = "name"
)

// ScoredCandidate is a search result with its confidence score and the
// evidence behind it.
type ScoredCandidate struct {
	search.Candidate

	// Score is the confidence this result is about the hinted person,
	// clamped to [0, 1].
	Score float64 `json:"score"`

	// Accepted reports whether the score cleared the acceptance policy.
	// Only accepted candidates leave the resolver.
	Accepted bool `json:"accepted"`

	// Source names the search pass that produced the candidate.
	Source string `json:"source"`

	// MatchedAnchors are the anchor terms found in the result.
	MatchedAnchors []string `json:"matched_anchors,omitempty"`

	// NegativeSignals are the negative keywords found in the result.
	NegativeSignals []string `json:"negative_signals,omitempty"`
}
