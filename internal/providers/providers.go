// Package providers wires configuration to a concrete calendar.Provider.
package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/config"
	"github.com/brieflab/daybrief/internal/gcal"
	"github.com/brieflab/daybrief/internal/graph"
	"github.com/brieflab/daybrief/internal/instrumentation"
)

// NewCalendar builds the calendar provider selected by the
// configuration.
func NewCalendar(ctx context.Context, cfg config.Config, guard *calendar.AccessGuard, logger *slog.Logger, metrics *instrumentation.Metrics) (calendar.Provider, error) {
	switch cfg.CalendarProvider {
	case config.ProviderGraph:
		tokens := graph.NewTokenCache(cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret,
			graph.WithTokenLogger(logger),
			graph.WithTokenMetrics(metrics))
		return graph.NewClient(tokens, guard, cfg.Timezone,
			graph.WithLogger(logger),
			graph.WithMetrics(metrics))
	case config.ProviderGCal:
		return gcal.NewClient(ctx, guard, cfg.Timezone,
			gcal.ServiceAccountOptions(cfg.Google.CredentialsFile, cfg.Google.Impersonate),
			gcal.WithLogger(logger),
			gcal.WithMetrics(metrics))
	default:
		return nil, fmt.Errorf("unknown calendar provider %q", cfg.CalendarProvider)
	}
}
