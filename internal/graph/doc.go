// Package graph implements the calendar.Provider interface against the
// Microsoft Graph API.
//
// It contains two pieces: TokenCache, which performs the OAuth2
// client-credentials exchange and caches the resulting token with a refresh
// safety margin and single-flight semantics, and Client, which fetches a
// mailbox's calendarView with full pagination and normalizes every event
// into the configured target timezone.
//
// Timestamp handling is the subtle part. Graph returns each event time as a
// wall-clock string plus a timezone identifier, and the identifier can
// differ from the timezone requested via the Prefer header. Normalization
// always interprets the timestamp in the timezone the provider attached to
// it and only then converts to the target zone.
package graph
