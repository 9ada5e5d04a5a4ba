package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/people"
	"github.com/brieflab/daybrief/internal/search"
)

// countingProvider serves a fixed candidate for every query and tracks
// concurrent callers.
type countingProvider struct {
	mu         sync.Mutex
	queries    int
	inFlight   int
	maxInWork  int
	err        error
	candidates []search.Candidate
}

func (p *countingProvider) Name() string { return "fake" }

func (p *countingProvider) Search(_ context.Context, _ string, _ int) ([]search.Candidate, error) {
	p.mu.Lock()
	p.queries++
	p.inFlight++
	if p.inFlight > p.maxInWork {
		p.maxInWork = p.inFlight
	}
	p.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	return p.candidates, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestOrchestrator(provider search.Provider, enabled bool, opts ...Option) *Orchestrator {
	resolver := people.NewResolver(provider, people.NewCache(time.Hour),
		people.DefaultResolverOptions(),
		people.WithResolverLogger(testLogger()))
	opts = append([]Option{WithLogger(testLogger())}, opts...)
	return NewOrchestrator(resolver, enabled, []string{"rpck.com"}, opts...)
}

func boardMeeting() calendar.Event {
	return calendar.Event{
		Subject:   "Board prep with Acme",
		Organizer: calendar.Attendee{DisplayName: "CEO", Email: "ceo@rpck.com", Organizer: true},
		Attendees: []calendar.Attendee{
			{DisplayName: "Jane Smith", Email: "jane@acme.com"},
			{DisplayName: "Colleague", Email: "colleague@rpck.com"},
			{DisplayName: "Mystery Guest"},
		},
	}
}

func intelByEmail(t *testing.T, ev EnrichedEvent, email string) AttendeeIntel {
	t.Helper()
	for _, intel := range ev.Intel {
		if intel.Attendee.Email == email {
			return intel
		}
	}
	t.Fatalf("no intel for %s", email)
	return AttendeeIntel{}
}

func TestOrchestrator_ClassifiesAttendees(t *testing.T) {
	provider := &countingProvider{candidates: []search.Candidate{
		{Title: "Jane Smith joins Acme board", URL: "https://acme.com/news", Snippet: "acme.com"},
	}}
	orch := newTestOrchestrator(provider, true)

	enriched, err := orch.Enrich(t.Context(), "ceo@rpck.com", []calendar.Event{boardMeeting()})
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	require.Len(t, enriched[0].Intel, 4)

	external := intelByEmail(t, enriched[0], "jane@acme.com")
	assert.Equal(t, OutcomeResolved, external.Outcome)
	require.NotEmpty(t, external.Matches)
	assert.True(t, external.Matches[0].Accepted)

	organizer := intelByEmail(t, enriched[0], "ceo@rpck.com")
	assert.Equal(t, OutcomeSkipped, organizer.Outcome)
	assert.Equal(t, ReasonInternalAttendee, organizer.Reason)

	colleague := intelByEmail(t, enriched[0], "colleague@rpck.com")
	assert.Equal(t, ReasonInternalAttendee, colleague.Reason)

	var mystery AttendeeIntel
	for _, intel := range enriched[0].Intel {
		if intel.Attendee.DisplayName == "Mystery Guest" {
			mystery = intel
		}
	}
	assert.Equal(t, OutcomeSkipped, mystery.Outcome)
	assert.Equal(t, ReasonMissingEmail, mystery.Reason)
}

func TestOrchestrator_MailboxDomainCountsAsInternal(t *testing.T) {
	provider := &countingProvider{}
	orch := NewOrchestrator(
		people.NewResolver(provider, people.NewCache(time.Hour),
			people.DefaultResolverOptions(), people.WithResolverLogger(testLogger())),
		true, nil, WithLogger(testLogger()))

	ev := calendar.Event{Attendees: []calendar.Attendee{
		{DisplayName: "Peer", Email: "peer@family-office.org"},
	}}
	enriched, err := orch.Enrich(t.Context(), "principal@family-office.org", []calendar.Event{ev})
	require.NoError(t, err)

	intel := intelByEmail(t, enriched[0], "peer@family-office.org")
	assert.Equal(t, ReasonInternalAttendee, intel.Reason)
	assert.Zero(t, provider.queries, "internal attendees must never reach the search provider")
}

func TestOrchestrator_DisabledResolver(t *testing.T) {
	provider := &countingProvider{}
	orch := newTestOrchestrator(provider, false)

	enriched, err := orch.Enrich(t.Context(), "ceo@rpck.com", []calendar.Event{boardMeeting()})
	require.NoError(t, err)

	external := intelByEmail(t, enriched[0], "jane@acme.com")
	assert.Equal(t, OutcomeSkipped, external.Outcome)
	assert.Equal(t, ReasonResolverDisabled, external.Reason)
	assert.Zero(t, provider.queries)
}

func TestOrchestrator_NoAcceptedCandidates(t *testing.T) {
	// The provider only returns a wrong-namesake result that scores
	// below every acceptance band.
	provider := &countingProvider{candidates: []search.Candidate{
		{Title: "Jane Smith obituary", URL: "https://paper.example.com/obit", Snippet: "funeral notice"},
	}}
	orch := newTestOrchestrator(provider, true)

	enriched, err := orch.Enrich(t.Context(), "ceo@rpck.com", []calendar.Event{boardMeeting()})
	require.NoError(t, err)

	external := intelByEmail(t, enriched[0], "jane@acme.com")
	assert.Equal(t, OutcomeSkipped, external.Outcome)
	assert.Equal(t, ReasonNoAcceptedCandidates, external.Reason)
	assert.Empty(t, external.Matches)
}

func TestOrchestrator_ProviderFailureIsIsolated(t *testing.T) {
	provider := &countingProvider{err: errors.New("search provider down")}
	orch := newTestOrchestrator(provider, true)

	events := []calendar.Event{
		boardMeeting(),
		{
			Subject:   "Second meeting",
			Attendees: []calendar.Attendee{{DisplayName: "Other Person", Email: "other@startup.io"}},
		},
	}
	enriched, err := orch.Enrich(t.Context(), "ceo@rpck.com", events)
	require.NoError(t, err, "provider failures must degrade per attendee, not abort the run")
	require.Len(t, enriched, 2)

	assert.Equal(t, ReasonNoAcceptedCandidates, intelByEmail(t, enriched[0], "jane@acme.com").Reason)
	assert.Equal(t, ReasonNoAcceptedCandidates, intelByEmail(t, enriched[1], "other@startup.io").Reason)
}

func TestOrchestrator_BoundedConcurrency(t *testing.T) {
	provider := &countingProvider{}

	var events []calendar.Event
	for _, email := range []string{
		"a@alpha.example", "b@beta.example", "c@gamma.example",
		"d@delta.example", "e@epsilon.example", "f@zeta.example",
	} {
		events = append(events, calendar.Event{
			Attendees: []calendar.Attendee{{DisplayName: email, Email: email}},
		})
	}

	orch := newTestOrchestrator(provider, true, WithConcurrency(2))
	_, err := orch.Enrich(t.Context(), "ceo@rpck.com", events)
	require.NoError(t, err)

	assert.LessOrEqual(t, provider.maxInWork, 2, "resolution must respect the concurrency limit")
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	provider := &countingProvider{}
	orch := newTestOrchestrator(provider, true)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := orch.Enrich(ctx, "ceo@rpck.com", []calendar.Event{boardMeeting()})
	assert.ErrorIs(t, err, context.Canceled)
}
