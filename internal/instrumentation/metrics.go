package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrProvider = "provider"
	attrStatus   = "status"
	attrResult   = "result"
	attrOutcome  = "outcome"
	attrPass     = "pass"
)

// Metrics provides methods for recording observability metrics. A nil
// *Metrics is a valid no-op recorder, so components can take it optionally.
type Metrics struct {
	calendarFetchTotal    metric.Int64Counter
	calendarFetchDuration metric.Float64Histogram
	tokenRefreshTotal     metric.Int64Counter
	searchQueriesTotal    metric.Int64Counter
	searchQueryDuration   metric.Float64Histogram
	resolverCacheTotal    metric.Int64Counter
	enrichOutcomesTotal   metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.calendarFetchTotal, err = meter.Int64Counter(
		"calendar_fetch_total",
		metric.WithDescription("Total number of calendar window fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_fetch_total counter: %w", err)
	}

	m.calendarFetchDuration, err = meter.Float64Histogram(
		"calendar_fetch_duration_seconds",
		metric.WithDescription("Calendar window fetch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_fetch_duration_seconds histogram: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"token_refresh_total",
		metric.WithDescription("Total number of access token exchanges"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_refresh_total counter: %w", err)
	}

	m.searchQueriesTotal, err = meter.Int64Counter(
		"search_queries_total",
		metric.WithDescription("Total number of search provider queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search_queries_total counter: %w", err)
	}

	m.searchQueryDuration, err = meter.Float64Histogram(
		"search_query_duration_seconds",
		metric.WithDescription("Search provider query duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search_query_duration_seconds histogram: %w", err)
	}

	m.resolverCacheTotal, err = meter.Int64Counter(
		"resolver_cache_total",
		metric.WithDescription("Resolver cache lookups by result (hit/miss)"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver_cache_total counter: %w", err)
	}

	m.enrichOutcomesTotal, err = meter.Int64Counter(
		"enrich_outcomes_total",
		metric.WithDescription("Per-attendee enrichment outcomes"),
		metric.WithUnit("{attendee}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrich_outcomes_total counter: %w", err)
	}

	return m, nil
}

// RecordCalendarFetch records one calendar window fetch.
func (m *Metrics) RecordCalendarFetch(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil || m.calendarFetchTotal == nil || m.calendarFetchDuration == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, provider),
		attribute.String(attrStatus, status),
	}
	m.calendarFetchTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calendarFetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokenRefresh records an access token exchange attempt.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, status string) {
	if m == nil || m.tokenRefreshTotal == nil {
		return
	}
	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}

// RecordSearchQuery records one search provider query.
// Pass identifies the resolution pass ("site" or "name").
func (m *Metrics) RecordSearchQuery(ctx context.Context, provider, pass, status string, duration time.Duration) {
	if m == nil || m.searchQueriesTotal == nil || m.searchQueryDuration == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, provider),
		attribute.String(attrPass, pass),
		attribute.String(attrStatus, status),
	}
	m.searchQueriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.searchQueryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordResolverCache records a resolver cache lookup result ("hit"/"miss").
func (m *Metrics) RecordResolverCache(ctx context.Context, result string) {
	if m == nil || m.resolverCacheTotal == nil {
		return
	}
	m.resolverCacheTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordEnrichOutcome records a per-attendee enrichment outcome
// ("resolved"/"skipped") with its reason code.
func (m *Metrics) RecordEnrichOutcome(ctx context.Context, outcome, reason string) {
	if m == nil || m.enrichOutcomesTotal == nil {
		return
	}
	m.enrichOutcomesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
		attribute.String("reason", reason),
	))
}
