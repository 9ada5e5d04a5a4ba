// Package instrumentation provides OpenTelemetry-based metrics and tracing
// for the calendar ingestion and person resolution pipeline.
//
// A Provider owns the meter and tracer providers and exporter lifecycle;
// the Metrics recorder exposes typed recording methods for the domain's
// metric set (calendar fetches, token refreshes, search queries, resolver
// cache lookups, enrichment outcomes). A nil *Metrics is a valid no-op
// recorder so that instrumentation stays optional in library code.
//
// Exporters are selected via environment configuration: prometheus (pull),
// otlp (push), stdout (development), or none.
package instrumentation
