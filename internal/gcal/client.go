package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/instrumentation"
	"github.com/brieflab/daybrief/internal/logging"
)

const (
	// defaultPageSize is the maxResults value requested per page.
	defaultPageSize = 50

	// maxPages caps pagination as a guard against a misbehaving upstream
	// handing out an endless page token chain.
	maxPages = 100

	// statusCancelled is the event status Google uses for cancellations.
	statusCancelled = "cancelled"
)

// Client fetches calendar events from the Google Calendar API. The mailbox
// doubles as the calendar ID, which is how Workspace exposes user calendars.
type Client struct {
	svc      *gcalendar.Service
	guard    *calendar.AccessGuard
	loc      *time.Location
	pageSize int64
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithPageSize sets the maxResults value requested per page.
func WithPageSize(size int64) Option {
	return func(c *Client) { c.pageSize = size }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

// NewClient creates a Google Calendar client. Events are normalized to the
// given IANA target timezone. Authentication comes through googleOpts,
// typically option.WithCredentialsFile for a service account with
// domain-wide delegation.
func NewClient(ctx context.Context, guard *calendar.AccessGuard, targetTZ string, googleOpts []option.ClientOption, opts ...Option) (*Client, error) {
	loc, err := time.LoadLocation(targetTZ)
	if err != nil {
		return nil, fmt.Errorf("invalid target timezone %q: %w", targetTZ, err)
	}

	svc, err := gcalendar.NewService(ctx, googleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	c := &Client{
		svc:      svc,
		guard:    guard,
		loc:      loc,
		pageSize: defaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchDay implements calendar.Provider. It lists the mailbox's calendar
// over the local day window, follows pagination until exhausted, and
// retains only events that land on the requested day in the target
// timezone with the mailbox as a participant.
func (c *Client) FetchDay(ctx context.Context, mailbox, day string) ([]calendar.Event, error) {
	if err := c.guard.Validate(mailbox); err != nil {
		return nil, err
	}

	dayStart, err := time.ParseInLocation(calendar.DayFormat, day, c.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", day, err)
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	started := time.Now()
	raw, err := c.listWindow(ctx, mailbox, dayStart, dayEnd)
	if err != nil {
		c.metrics.RecordCalendarFetch(ctx, "gcal", logging.StatusError, time.Since(started))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	c.metrics.RecordCalendarFetch(ctx, "gcal", logging.StatusSuccess, time.Since(started))

	events := make([]calendar.Event, 0, len(raw))
	for _, item := range raw {
		if item.Status == statusCancelled {
			continue
		}
		ev, err := c.normalize(item)
		if err != nil {
			c.logger.Warn("dropping event with unusable timestamps",
				"subject", item.Summary, logging.Err(err))
			continue
		}
		if ev.Start.In(c.loc).Format(calendar.DayFormat) != day {
			continue
		}
		if !ev.HasParticipant(mailbox) {
			continue
		}
		events = append(events, ev)
	}

	c.logger.Debug("calendar day fetched",
		logging.MailboxHash(mailbox),
		logging.Day(day),
		"raw", len(raw),
		"retained", len(events))
	return events, nil
}

// listWindow accumulates every event in the window before any filtering
// happens, following page tokens until the listing is exhausted.
func (c *Client) listWindow(ctx context.Context, mailbox string, start, end time.Time) ([]*gcalendar.Event, error) {
	var (
		raw       []*gcalendar.Event
		pageToken string
	)
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("event listing exceeded %d pages", maxPages)
		}

		call := c.svc.Events.List(mailbox).
			Context(ctx).
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(c.pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, err
		}

		raw = append(raw, resp.Items...)
		if resp.NextPageToken == "" {
			return raw, nil
		}
		pageToken = resp.NextPageToken
	}
}

// normalize converts an API event into a domain event in the target
// timezone. All-day events are anchored at local midnight.
func (c *Client) normalize(item *gcalendar.Event) (calendar.Event, error) {
	start, err := c.parseEventTime(item.Start)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := c.parseEventTime(item.End)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("end: %w", err)
	}

	ev := calendar.Event{
		Subject:   item.Summary,
		Start:     start,
		End:       end,
		Location:  item.Location,
		Cancelled: item.Status == statusCancelled,
	}
	if item.Organizer != nil {
		ev.Organizer = calendar.Attendee{
			DisplayName: item.Organizer.DisplayName,
			Email:       item.Organizer.Email,
			Organizer:   true,
		}
	}
	for _, a := range item.Attendees {
		if a.Resource {
			// Rooms and equipment are not people.
			continue
		}
		ev.Attendees = append(ev.Attendees, calendar.Attendee{
			DisplayName: a.DisplayName,
			Email:       a.Email,
			Organizer:   a.Organizer,
		})
	}
	return ev, nil
}

// parseEventTime interprets an event boundary. Timed events carry an
// RFC3339 dateTime; all-day events carry a bare date.
func (c *Client) parseEventTime(edt *gcalendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing time boundary")
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable dateTime %q: %w", edt.DateTime, err)
		}
		return t.In(c.loc), nil
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation(calendar.DayFormat, edt.Date, c.loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable date %q: %w", edt.Date, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("empty time boundary")
}

// ServiceAccountOptions builds the Google client options for service
// account credentials, optionally impersonating a Workspace user through
// domain-wide delegation.
func ServiceAccountOptions(credentialsFile, impersonate string) []option.ClientOption {
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcalendar.CalendarReadonlyScope),
	}
	if strings.TrimSpace(impersonate) != "" {
		opts = append(opts, option.ImpersonateCredentials(impersonate))
	}
	return opts
}
