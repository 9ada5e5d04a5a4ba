package graph

import (
	"fmt"
	"strings"
	"time"
)

// calendarViewResponse is one page of a paginated calendarView response.
type calendarViewResponse struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

// graphEvent is the raw wire shape of a Graph calendar event, reduced to
// the fields selected by the client.
type graphEvent struct {
	Subject     string          `json:"subject"`
	Start       graphDateTime   `json:"start"`
	End         graphDateTime   `json:"end"`
	Location    graphLocation   `json:"location"`
	Organizer   graphRecipient  `json:"organizer"`
	Attendees   []graphAttendee `json:"attendees"`
	IsCancelled bool            `json:"isCancelled"`
}

// graphDateTime carries a wall-clock timestamp together with the timezone
// the provider rendered it in. The two must be interpreted together; the
// timestamp alone is ambiguous.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphAttendee struct {
	Type         string            `json:"type"`
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphEmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// windowsZones maps the Windows timezone display names Graph attaches to
// server-rendered times (when a Prefer header is sent) to IANA identifiers.
// Identifiers not in this map are tried as IANA names directly.
var windowsZones = map[string]string{
	"UTC":                            "UTC",
	"GMT Standard Time":              "Europe/London",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Romance Standard Time":          "Europe/Paris",
	"Central Europe Standard Time":   "Europe/Budapest",
	"Central European Standard Time": "Europe/Warsaw",
	"E. Europe Standard Time":        "Europe/Chisinau",
	"Eastern Standard Time":          "America/New_York",
	"Central Standard Time":          "America/Chicago",
	"Mountain Standard Time":         "America/Denver",
	"Pacific Standard Time":          "America/Los_Angeles",
	"Alaskan Standard Time":          "America/Anchorage",
	"Hawaiian Standard Time":         "Pacific/Honolulu",
	"Atlantic Standard Time":         "America/Halifax",
	"SA Pacific Standard Time":       "America/Bogota",
	"E. South America Standard Time": "America/Sao_Paulo",
	"India Standard Time":            "Asia/Kolkata",
	"China Standard Time":            "Asia/Shanghai",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"Singapore Standard Time":        "Asia/Singapore",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"New Zealand Standard Time":      "Pacific/Auckland",
	"Israel Standard Time":           "Asia/Jerusalem",
	"Arabian Standard Time":          "Asia/Dubai",
	"South Africa Standard Time":     "Africa/Johannesburg",
}

// resolveLocation turns a Graph timezone identifier into a *time.Location.
// Both Windows display names and IANA identifiers are accepted.
func resolveLocation(identifier string) (*time.Location, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || strings.EqualFold(identifier, "UTC") {
		return time.UTC, nil
	}
	if iana, ok := windowsZones[identifier]; ok {
		identifier = iana
	}
	loc, err := time.LoadLocation(identifier)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone identifier %q: %w", identifier, err)
	}
	return loc, nil
}

// graphTimeLayouts are the timestamp layouts Graph uses for dateTime values
// rendered without a UTC offset. The offset, when absent, is defined by the
// accompanying timeZone identifier.
var graphTimeLayouts = []string{
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
}

// parseGraphTime interprets a Graph timestamp in the timezone the provider
// attached to it, then converts the result to the target location.
func parseGraphTime(value graphDateTime, target *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(value.DateTime)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty dateTime value")
	}

	// Timestamps carrying an explicit offset are unambiguous.
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(target), nil
	}

	loc, err := resolveLocation(value.TimeZone)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range graphTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(target), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable dateTime %q", raw)
}
