package calendar

import (
	"testing"
	"time"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@acme.com", "acme.com"},
		{"Jane.Smith@Acme.COM", "acme.com"},
		{"jane@", ""},
		{"jane", ""},
		{"", ""},
		{"jane@localhost", ""},
		{"weird@name@acme.com", "acme.com"},
	}

	for _, tt := range tests {
		if got := DomainOf(tt.email); got != tt.expected {
			t.Errorf("DomainOf(%q) = %q, want %q", tt.email, got, tt.expected)
		}
	}
}

func TestAttendeeEqual(t *testing.T) {
	a := Attendee{DisplayName: "Jane Smith", Email: "jane@acme.com"}
	b := Attendee{DisplayName: "J. Smith", Email: "JANE@ACME.COM"}
	if !a.Equal(b) {
		t.Error("attendees with the same email should be equal regardless of case")
	}

	c := Attendee{DisplayName: "Jane Smith"}
	d := Attendee{DisplayName: "Jane Smith"}
	if !c.Equal(d) {
		t.Error("attendees without email should compare by display name")
	}

	e := Attendee{DisplayName: "Jane Smith", Email: "jane@other.com"}
	if a.Equal(e) {
		t.Error("attendees with different emails should not be equal")
	}
}

func TestAttendeeInternal(t *testing.T) {
	internal := []string{"rpck.com", "rpckllp.com"}

	tests := []struct {
		name     string
		attendee Attendee
		expected bool
	}{
		{"internal domain", Attendee{Email: "staff@rpck.com"}, true},
		{"internal domain mixed case", Attendee{Email: "Staff@RPCK.com"}, true},
		{"external domain", Attendee{Email: "jane@acme.com"}, false},
		{"no email", Attendee{DisplayName: "Room 4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attendee.Internal(internal); got != tt.expected {
				t.Errorf("Internal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEventHasParticipant(t *testing.T) {
	event := Event{
		Subject:   "Quarterly review",
		Organizer: Attendee{Email: "organizer@rpck.com", Organizer: true},
		Attendees: []Attendee{
			{Email: "jane@acme.com"},
			{Email: "staff@rpck.com"},
		},
	}

	if !event.HasParticipant("organizer@rpck.com") {
		t.Error("organizer should count as participant")
	}
	if !event.HasParticipant("STAFF@RPCK.COM") {
		t.Error("attendee match should be case-insensitive")
	}
	if event.HasParticipant("stranger@rpck.com") {
		t.Error("unrelated mailbox should not be a participant")
	}
}

func TestEventExternalAttendees(t *testing.T) {
	event := Event{
		Start: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		Attendees: []Attendee{
			{DisplayName: "Jane", Email: "jane@acme.com"},
			{DisplayName: "Staff", Email: "staff@rpck.com"},
			{DisplayName: "Room", Email: ""},
		},
	}

	external := event.ExternalAttendees([]string{"rpck.com"})
	if len(external) != 2 {
		t.Fatalf("expected 2 external attendees, got %d", len(external))
	}
	if external[0].Email != "jane@acme.com" {
		t.Errorf("unexpected first external attendee: %+v", external[0])
	}
}
