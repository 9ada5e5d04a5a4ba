// Package people resolves meeting attendees to public news results using
// metadata-only search with deterministic confidence scoring. A hint is
// built from the attendee and its event, two search passes run against a
// pluggable provider, and candidates are scored by anchor and negative
// keyword matches. Accepted results are cached per (name, domain) with a
// TTL so repeated meetings with the same person cost one search.
package people
