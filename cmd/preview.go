package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/config"
	"github.com/brieflab/daybrief/internal/enrich"
	"github.com/brieflab/daybrief/internal/instrumentation"
	"github.com/brieflab/daybrief/internal/people"
	"github.com/brieflab/daybrief/internal/providers"
	"github.com/brieflab/daybrief/internal/search"
	"github.com/brieflab/daybrief/internal/server"
)

func newPreviewCmd() *cobra.Command {
	var (
		mailbox     string
		date        string
		format      string
		logLevel    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch one mailbox's calendar day and print the enriched briefing",
		Long: `Fetch the calendar events for a mailbox on a given day, resolve the
external attendees against public news, and print the result.

The mailbox must pass the allowlist when ALLOWED_MAILBOXES is set. The
day defaults to today in the target timezone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(mailbox, date, format, logLevel, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&mailbox, "mailbox", "", "Mailbox to fetch the calendar for (required)")
	cmd.Flags().StringVar(&date, "date", "", "Day to fetch as YYYY-MM-DD (default: today in the target timezone)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address, used when METRICS_EXPORTER=prometheus")
	_ = cmd.MarkFlagRequired("mailbox")

	return cmd
}

func runPreview(mailbox, date, format, logLevel, metricsAddr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(logLevel)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid target timezone %q: %w", cfg.Timezone, err)
	}
	if date == "" {
		date = time.Now().In(loc).Format(calendar.DayFormat)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", "error", err.Error())
		}
	}()
	metrics := provider.Metrics()

	if provider.Enabled() && instrConfig.MetricsExporter == instrumentation.ExporterPrometheus {
		metricsServer, err := server.NewMetricsServer(metricsAddr, provider, logger)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		ready := make(chan struct{})
		serveErr := make(chan error, 1)
		go func() {
			if err := metricsServer.Start(ready); err != nil && err != http.ErrServerClosed {
				serveErr <- err
			}
			close(serveErr)
		}()
		select {
		case <-ready:
		case err := <-serveErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
		defer func() { _ = metricsServer.Shutdown(context.Background()) }()
	}

	guard := calendar.NewAccessGuard(cfg.AllowedMailboxes, logger)

	calProvider, err := providers.NewCalendar(ctx, cfg, guard, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create calendar provider: %w", err)
	}

	events, err := calProvider.FetchDay(ctx, mailbox, date)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar day: %w", err)
	}

	searchProvider, err := search.NewProvider(cfg.Search.Provider, cfg.Search.APIKey, logger)
	if err != nil {
		return err
	}

	resolverOpts := people.DefaultResolverOptions()
	resolverOpts.HighThreshold = cfg.Resolver.HighThreshold
	resolverOpts.MediumThreshold = cfg.Resolver.MediumThreshold
	resolverOpts.ShowMedium = cfg.Resolver.ShowMedium
	resolverOpts.NegativeKeywords = cfg.Resolver.NegativeKeywords

	resolver := people.NewResolver(searchProvider,
		people.NewCache(cfg.Resolver.CacheTTL),
		resolverOpts,
		people.WithResolverLogger(logger),
		people.WithResolverMetrics(metrics))

	orchestrator := enrich.NewOrchestrator(resolver, cfg.Resolver.Enabled, cfg.InternalDomains,
		enrich.WithConcurrency(cfg.Resolver.Concurrency),
		enrich.WithLogger(logger),
		enrich.WithMetrics(metrics))

	enriched, err := orchestrator.Enrich(ctx, mailbox, events)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	return renderBriefing(os.Stdout, format, date, mailbox, loc, enriched)
}

// renderBriefing writes the enriched day in the requested format.
func renderBriefing(w io.Writer, format, date, mailbox string, loc *time.Location, enriched []enrich.EnrichedEvent) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Date    string                 `json:"date"`
			Mailbox string                 `json:"mailbox"`
			Events  []enrich.EnrichedEvent `json:"events"`
		}{Date: date, Mailbox: mailbox, Events: enriched})
	case "text":
		renderText(w, date, mailbox, loc, enriched)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, date, mailbox string, loc *time.Location, enriched []enrich.EnrichedEvent) {
	fmt.Fprintf(w, "Briefing for %s on %s\n", mailbox, date)
	if len(enriched) == 0 {
		fmt.Fprintln(w, "No meetings.")
		return
	}

	for _, ev := range enriched {
		fmt.Fprintf(w, "\n%s-%s  %s",
			ev.Start.In(loc).Format("15:04"),
			ev.End.In(loc).Format("15:04"),
			ev.Subject)
		if ev.Location != "" {
			fmt.Fprintf(w, "  (%s)", ev.Location)
		}
		fmt.Fprintln(w)

		for _, intel := range ev.Intel {
			name := intel.Attendee.DisplayName
			if name == "" {
				name = intel.Attendee.Email
			}
			if intel.Outcome != enrich.OutcomeResolved {
				if intel.Reason != enrich.ReasonInternalAttendee {
					fmt.Fprintf(w, "  - %s: no intel (%s)\n", name, intel.Reason)
				}
				continue
			}
			fmt.Fprintf(w, "  - %s:\n", name)
			for _, match := range intel.Matches {
				fmt.Fprintf(w, "      [%.2f] %s\n        %s\n", match.Score, match.Title, match.URL)
			}
		}
	}
}
