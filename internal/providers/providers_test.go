package providers

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/config"
)

func TestNewCalendar_Graph(t *testing.T) {
	cfg := config.Config{
		CalendarProvider: config.ProviderGraph,
		Graph:            config.GraphConfig{TenantID: "t", ClientID: "c", ClientSecret: "s"},
		Timezone:         "America/New_York",
	}
	logger := slog.New(slog.DiscardHandler)
	guard := calendar.NewAccessGuard(nil, logger)

	provider, err := NewCalendar(t.Context(), cfg, guard, logger, nil)
	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewCalendar_BadTimezone(t *testing.T) {
	cfg := config.Config{
		CalendarProvider: config.ProviderGraph,
		Timezone:         "Nowhere/Nothing",
	}
	logger := slog.New(slog.DiscardHandler)

	_, err := NewCalendar(t.Context(), cfg, calendar.NewAccessGuard(nil, logger), logger, nil)
	assert.Error(t, err)
}

func TestNewCalendar_UnknownProvider(t *testing.T) {
	cfg := config.Config{CalendarProvider: "exchange"}
	logger := slog.New(slog.DiscardHandler)

	_, err := NewCalendar(t.Context(), cfg, calendar.NewAccessGuard(nil, logger), logger, nil)
	assert.Error(t, err)
}
