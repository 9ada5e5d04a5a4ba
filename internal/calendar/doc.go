// Package calendar defines the domain model shared by all calendar
// providers: normalized events and attendees, the Provider interface,
// the mailbox access guard, and the error taxonomy for fetch failures.
//
// Providers live in their own packages (graph, gcal) and return values of
// these types. Events are normalized to a single target timezone before
// they leave a provider; everything downstream (person resolution,
// enrichment, rendering) works on this model only.
package calendar
