package instrumentation

import (
	"os"
	"strconv"
)

// Exporter names accepted by the provider.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: daybrief).
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: true).
	// Set INSTRUMENTATION_ENABLED=false to disable metrics and tracing.
	Enabled bool

	// MetricsExporter specifies the metrics exporter type.
	// Options: "prometheus", "otlp", "stdout", "none" (default: "none").
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type.
	// Options: "otlp", "stdout", "none" (default: "none").
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint, e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (default: 0.1).
	TraceSamplingRate float64
}

// DefaultConfig returns a Config populated from environment variables with
// sensible defaults for a short-lived CLI process.
func DefaultConfig() Config {
	return Config{
		ServiceName:       getEnv("OTEL_SERVICE_NAME", "daybrief"),
		ServiceVersion:    getEnv("OTEL_SERVICE_VERSION", "dev"),
		Enabled:           getEnvBool("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   getEnv("METRICS_EXPORTER", ExporterNone),
		TracingExporter:   getEnv("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
