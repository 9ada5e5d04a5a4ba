package calendar

import (
	"strings"
	"time"
)

// DayFormat is the wire format for requested calendar days.
const DayFormat = "2006-01-02"

// Attendee represents a single participant of a calendar event.
type Attendee struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	Organizer   bool   `json:"organizer,omitempty"`
}

// Domain returns the lowercased domain of the attendee's email address,
// or an empty string when no usable email is present.
func (a Attendee) Domain() string {
	return DomainOf(a.Email)
}

// Equal reports whether two attendees identify the same person.
// Attendees compare by email when both have one, otherwise by display name.
func (a Attendee) Equal(other Attendee) bool {
	if a.Email != "" && other.Email != "" {
		return strings.EqualFold(a.Email, other.Email)
	}
	return a.DisplayName == other.DisplayName
}

// Internal reports whether the attendee belongs to one of the given
// internal domains. Attendees without an email are treated as external.
func (a Attendee) Internal(internalDomains []string) bool {
	domain := a.Domain()
	if domain == "" {
		return false
	}
	for _, d := range internalDomains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

// Event is a normalized calendar event. Start and End carry the configured
// target timezone; the struct is immutable once constructed from a provider
// response and is discarded after the enrichment cycle.
type Event struct {
	Subject   string     `json:"subject"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Location  string     `json:"location,omitempty"`
	Organizer Attendee   `json:"organizer"`
	Attendees []Attendee `json:"attendees"`
	Cancelled bool       `json:"cancelled,omitempty"`
}

// HasParticipant reports whether the given mailbox is the organizer of the
// event or appears in its attendee list. Comparison is case-insensitive.
func (e Event) HasParticipant(mailbox string) bool {
	if strings.EqualFold(e.Organizer.Email, mailbox) {
		return true
	}
	for _, a := range e.Attendees {
		if strings.EqualFold(a.Email, mailbox) {
			return true
		}
	}
	return false
}

// ExternalAttendees returns the attendees whose email domain is not one of
// the internal domains. Only these are eligible for person resolution.
func (e Event) ExternalAttendees(internalDomains []string) []Attendee {
	var external []Attendee
	for _, a := range e.Attendees {
		if !a.Internal(internalDomains) {
			external = append(external, a)
		}
	}
	return external
}

// DomainOf extracts the lowercased domain from an email address.
// Returns an empty string for addresses without a plausible domain part.
func DomainOf(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if !strings.Contains(domain, ".") {
		return ""
	}
	return domain
}
