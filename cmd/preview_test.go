package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/enrich"
	"github.com/brieflab/daybrief/internal/people"
	"github.com/brieflab/daybrief/internal/search"
)

func sampleDay(t *testing.T) (*time.Location, []enrich.EnrichedEvent) {
	t.Helper()
	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2025, 1, 15, 9, 30, 0, 0, eastern)
	return eastern, []enrich.EnrichedEvent{
		{
			Event: calendar.Event{
				Subject:  "Board prep",
				Start:    start,
				End:      start.Add(time.Hour),
				Location: "Conference Room A",
			},
			Intel: []enrich.AttendeeIntel{
				{
					Attendee: calendar.Attendee{DisplayName: "CEO", Email: "ceo@rpck.com"},
					Outcome:  enrich.OutcomeSkipped,
					Reason:   enrich.ReasonInternalAttendee,
				},
				{
					Attendee: calendar.Attendee{DisplayName: "Jane Smith", Email: "jane@acme.com"},
					Outcome:  enrich.OutcomeResolved,
					Matches: []people.ScoredCandidate{{
						Candidate: search.Candidate{
							Title: "Jane Smith joins Acme board",
							URL:   "https://acme.com/news/jane",
						},
						Score:    0.9,
						Accepted: true,
					}},
				},
				{
					Attendee: calendar.Attendee{DisplayName: "Mystery Guest"},
					Outcome:  enrich.OutcomeSkipped,
					Reason:   enrich.ReasonMissingEmail,
				},
			},
		},
	}
}

func TestRenderText(t *testing.T) {
	loc, enriched := sampleDay(t)

	var buf strings.Builder
	renderText(&buf, "2025-01-15", "ceo@rpck.com", loc, enriched)
	out := buf.String()

	assert.Contains(t, out, "Briefing for ceo@rpck.com on 2025-01-15")
	assert.Contains(t, out, "09:30-10:30  Board prep  (Conference Room A)")
	assert.Contains(t, out, "[0.90] Jane Smith joins Acme board")
	assert.Contains(t, out, "Mystery Guest: no intel (missing_email)")
	assert.NotContains(t, out, "CEO:", "internal attendees carry no intel lines")
}

func TestRenderText_EmptyDay(t *testing.T) {
	loc, _ := sampleDay(t)

	var buf strings.Builder
	renderText(&buf, "2025-01-15", "ceo@rpck.com", loc, nil)
	assert.Contains(t, buf.String(), "No meetings.")
}

func TestRenderBriefing_JSON(t *testing.T) {
	loc, enriched := sampleDay(t)

	var buf strings.Builder
	err := renderBriefing(&buf, "json", "2025-01-15", "ceo@rpck.com", loc, enriched)
	require.NoError(t, err)

	var decoded struct {
		Date    string                 `json:"date"`
		Mailbox string                 `json:"mailbox"`
		Events  []enrich.EnrichedEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &decoded))
	assert.Equal(t, "2025-01-15", decoded.Date)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, "Board prep", decoded.Events[0].Subject)
	require.Len(t, decoded.Events[0].Intel, 3)
}

func TestRenderBriefing_UnknownFormat(t *testing.T) {
	loc, enriched := sampleDay(t)

	var buf strings.Builder
	err := renderBriefing(&buf, "yaml", "2025-01-15", "ceo@rpck.com", loc, enriched)
	assert.Error(t, err)
}
