package calendar

import "context"

// Provider fetches normalized events for a mailbox on a single day.
// Implementations must apply the shared retention policy: only events whose
// normalized local start date equals the requested day, where the mailbox is
// organizer or attendee, and which are not cancelled.
type Provider interface {
	// FetchDay returns the events for the given mailbox on the given day.
	// The day is formatted as DayFormat (YYYY-MM-DD) and interpreted in the
	// provider's configured target timezone.
	FetchDay(ctx context.Context, mailbox, day string) ([]Event, error)
}
