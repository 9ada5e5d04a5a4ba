package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/instrumentation"
	"github.com/brieflab/daybrief/internal/logging"
	"github.com/brieflab/daybrief/internal/people"
)

// DefaultConcurrency bounds how many attendees resolve in parallel.
// Resolution is short HTTP calls; a small limit keeps search provider
// rate limits comfortable.
const DefaultConcurrency = 4

// Attendee resolution outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeSkipped  = "skipped"
)

// Skip reasons recorded in the audit trail.
const (
	ReasonInternalAttendee     = "internal_attendee"
	ReasonMissingEmail         = "missing_email"
	ReasonNoAcceptedCandidates = "no_accepted_candidates"
	ReasonResolverDisabled     = "resolver_disabled"
)

// AttendeeIntel is the per-attendee result of an enrichment run: either
// accepted news candidates or the reason none were attached.
type AttendeeIntel struct {
	Attendee calendar.Attendee        `json:"attendee"`
	Outcome  string                   `json:"outcome"`
	Reason   string                   `json:"reason,omitempty"`
	Matches  []people.ScoredCandidate `json:"matches,omitempty"`
}

// EnrichedEvent is an event with person intel attached for every
// attendee, organizer included.
type EnrichedEvent struct {
	calendar.Event

	Intel []AttendeeIntel `json:"intel"`
}

// Orchestrator fans person resolution out over the attendees of a day's
// events. One attendee's failure never blocks another's resolution.
type Orchestrator struct {
	resolver        *people.Resolver
	enabled         bool
	internalDomains []string
	concurrency     int
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency sets the parallel resolution limit.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = metrics }
}

// NewOrchestrator creates an orchestrator. A nil resolver or enabled set
// to false turns every external attendee into a resolver_disabled skip.
func NewOrchestrator(resolver *people.Resolver, enabled bool, internalDomains []string, opts ...Option) *Orchestrator {
	domains := make([]string, 0, len(internalDomains))
	for _, d := range internalDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}

	o := &Orchestrator{
		resolver:        resolver,
		enabled:         enabled && resolver != nil,
		internalDomains: domains,
		concurrency:     DefaultConcurrency,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enrich attaches person intel to every attendee of every event. The
// mailbox's own domain counts as internal alongside the configured
// internal domains. Returns early only on context cancellation.
func (o *Orchestrator) Enrich(ctx context.Context, mailbox string, events []calendar.Event) ([]EnrichedEvent, error) {
	runID := uuid.NewString()
	logger := o.logger.With(logging.RunID(runID))

	internal := o.internalDomains
	if d := calendar.DomainOf(mailbox); d != "" {
		internal = append(append([]string{}, internal...), d)
	}

	enriched := make([]EnrichedEvent, len(events))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(o.concurrency)

	for i, ev := range events {
		roster := append([]calendar.Attendee{ev.Organizer}, ev.Attendees...)
		enriched[i] = EnrichedEvent{Event: ev, Intel: make([]AttendeeIntel, len(roster))}

		for j, attendee := range roster {
			slot := &enriched[i].Intel[j]
			slot.Attendee = attendee

			switch {
			case attendee.Internal(internal):
				o.record(ctx, slot, OutcomeSkipped, ReasonInternalAttendee, nil)
			case strings.TrimSpace(attendee.Email) == "":
				o.record(ctx, slot, OutcomeSkipped, ReasonMissingEmail, nil)
			case !o.enabled:
				o.record(ctx, slot, OutcomeSkipped, ReasonResolverDisabled, nil)
			default:
				hint := people.BuildHint(attendee, ev)
				grp.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					matches := o.resolver.Resolve(ctx, hint)
					if len(matches) == 0 {
						o.record(ctx, slot, OutcomeSkipped, ReasonNoAcceptedCandidates, nil)
						return nil
					}
					o.record(ctx, slot, OutcomeResolved, "", matches)
					return nil
				})
			}
		}
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	logger.Info("enrichment run finished",
		logging.MailboxHash(mailbox),
		"events", len(events))
	return enriched, nil
}

// record fills one audit slot and counts the outcome. Each slot is
// written by exactly one goroutine.
func (o *Orchestrator) record(ctx context.Context, slot *AttendeeIntel, outcome, reason string, matches []people.ScoredCandidate) {
	slot.Outcome = outcome
	slot.Reason = reason
	slot.Matches = matches
	o.metrics.RecordEnrichOutcome(ctx, outcome, reason)
}
