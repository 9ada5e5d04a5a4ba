package people

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brieflab/daybrief/internal/calendar"
)

func TestHint_NormalizedName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Jane Smith", "Jane Smith"},
		{"honorific", "Dr. Jane Smith", "Jane Smith"},
		{"honorific no dot", "Mr Jordan Li", "Jordan Li"},
		{"suffix", "Robert Downey Jr.", "Robert Downey"},
		{"roman suffix", "Thurston Howell III", "Thurston Howell"},
		{"both", "Prof. Ada Lovelace Sr.", "Ada Lovelace"},
		{"trailing period", "Jane Smith.", "Jane Smith"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hint{Name: tt.in}.NormalizedName())
		})
	}
}

func TestHint_SearchName(t *testing.T) {
	assert.Equal(t, "Jane Smith", Hint{Name: "Jane Q. Public Smith"}.SearchName())
	assert.Equal(t, "Cher", Hint{Name: "Cher"}.SearchName())
	assert.Equal(t, "Jane Smith", Hint{Name: "Dr. Jane van der Smith"}.SearchName())
}

func TestIsGenericDomain(t *testing.T) {
	assert.True(t, IsGenericDomain("gmail.com"))
	assert.True(t, IsGenericDomain("Outlook.com"))
	assert.False(t, IsGenericDomain("acme.com"))
	assert.False(t, IsGenericDomain(""))
}

func TestCompanyFromDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"acme.com", "Acme"},
		{"acme-capital.com", "Acme Capital"},
		{"www.acme.co.uk", "Acme"},
		{"gmail.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompanyFromDomain(tt.domain), tt.domain)
	}
}

func TestBuildHint(t *testing.T) {
	attendee := calendar.Attendee{DisplayName: "Jane Smith", Email: "jane@acme.com"}
	ev := calendar.Event{
		Subject:   "Kheyti Project kickoff with Acme",
		Organizer: calendar.Attendee{DisplayName: "CEO", Email: "ceo@rpck.com", Organizer: true},
		Attendees: []calendar.Attendee{
			attendee,
			{DisplayName: "Counsel", Email: "counsel@lawfirm.com"},
			{DisplayName: "Also Acme", Email: "ops@acme.com"},
			{DisplayName: "Personal", Email: "someone@gmail.com"},
		},
	}

	hint := BuildHint(attendee, ev)

	assert.Equal(t, "Jane Smith", hint.Name)
	assert.Equal(t, "acme.com", hint.Domain)
	assert.Equal(t, "Acme", hint.Company)
	// Own domain, duplicates and consumer domains do not become anchors.
	assert.Equal(t, []string{"rpck.com", "lawfirm.com"}, hint.CoAttendeeDomains)
	assert.Equal(t, []string{"Kheyti", "Project", "Acme"}, hint.Keywords)
}

func TestBuildHint_NameFallsBackToEmailLocalPart(t *testing.T) {
	hint := BuildHint(calendar.Attendee{Email: "jane.smith@acme.com"}, calendar.Event{})
	assert.Equal(t, "jane smith", hint.Name)
}

func TestHint_ConfidenceAnchors(t *testing.T) {
	hint := Hint{
		Domain:            "acme.com",
		Company:           "Acme",
		CoAttendeeDomains: []string{"lawfirm.com"},
	}
	assert.Equal(t, []string{"acme.com", "Acme", "lawfirm.com"}, hint.ConfidenceAnchors())

	// A generic domain contributes nothing to anchor.
	generic := Hint{Domain: "gmail.com"}
	assert.Empty(t, generic.ConfidenceAnchors())
}
