// Package search abstracts news search behind a small Provider interface
// with Bing News, NewsAPI and deterministic stub implementations. The
// person resolution layer composes queries; this package only executes
// them and normalizes results into Candidate values.
package search
