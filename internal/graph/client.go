package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/instrumentation"
	"github.com/brieflab/daybrief/internal/logging"
)

const (
	// DefaultBaseURL is the production Graph endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultFetchTimeout bounds a single calendar page request.
	DefaultFetchTimeout = 15 * time.Second

	// defaultPageSize is the $top value requested per page.
	defaultPageSize = 50

	// maxPages caps pagination as a guard against a misbehaving upstream
	// returning an endless nextLink chain.
	maxPages = 100

	// maxErrorBody limits how much of an upstream error body is retained.
	maxErrorBody = 512

	// selectFields is the $select projection for calendarView requests.
	selectFields = "subject,start,end,location,organizer,attendees,isCancelled"
)

// Client fetches calendar events for a mailbox from Microsoft Graph.
// It paginates calendarView responses, normalizes timestamps to the target
// timezone, and applies the day/participant/cancellation retention policy.
type Client struct {
	baseURL  string
	client   *http.Client
	tokens   *TokenCache
	guard    *calendar.AccessGuard
	loc      *time.Location
	tzName   string
	pageSize int
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph endpoint. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client used for calendar requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithPageSize sets the $top value requested per page.
func WithPageSize(size int) ClientOption {
	return func(c *Client) { c.pageSize = size }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) ClientOption {
	return func(c *Client) { c.metrics = metrics }
}

// NewClient creates a Graph calendar client. Events are normalized to the
// given IANA target timezone. The guard is consulted before every fetch.
func NewClient(tokens *TokenCache, guard *calendar.AccessGuard, targetTZ string, opts ...ClientOption) (*Client, error) {
	loc, err := time.LoadLocation(targetTZ)
	if err != nil {
		return nil, fmt.Errorf("invalid target timezone %q: %w", targetTZ, err)
	}

	c := &Client{
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: DefaultFetchTimeout},
		tokens:   tokens,
		guard:    guard,
		loc:      loc,
		tzName:   targetTZ,
		pageSize: defaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchDay implements calendar.Provider. It computes the UTC window covering
// the requested local day, fetches the window, and retains only events whose
// normalized local start date equals the day exactly.
func (c *Client) FetchDay(ctx context.Context, mailbox, day string) ([]calendar.Event, error) {
	dayStart, err := time.ParseInLocation(calendar.DayFormat, day, c.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", day, err)
	}

	startUTC := dayStart.UTC()
	endUTC := dayStart.AddDate(0, 0, 1).UTC()

	events, err := c.FetchBetween(ctx, mailbox, startUTC, endUTC)
	if err != nil {
		return nil, err
	}

	// The window is computed from local midnight, but events whose provider
	// timezone placed them just over the boundary can still slip in; the day
	// comparison in the target timezone is authoritative.
	retained := events[:0]
	for _, ev := range events {
		if ev.Start.In(c.loc).Format(calendar.DayFormat) == day {
			retained = append(retained, ev)
		}
	}
	return retained, nil
}

// FetchBetween fetches all events for the mailbox in the UTC window,
// following pagination until exhausted, and applies the participant and
// cancellation policies. Day filtering is the caller's concern.
func (c *Client) FetchBetween(ctx context.Context, mailbox string, startUTC, endUTC time.Time) ([]calendar.Event, error) {
	if err := c.guard.Validate(mailbox); err != nil {
		return nil, err
	}

	started := time.Now()
	raw, err := c.fetchPages(ctx, mailbox, startUTC, endUTC)
	if err != nil {
		c.metrics.RecordCalendarFetch(ctx, "graph", logging.StatusError, time.Since(started))
		return nil, err
	}
	c.metrics.RecordCalendarFetch(ctx, "graph", logging.StatusSuccess, time.Since(started))

	events := make([]calendar.Event, 0, len(raw))
	for _, rec := range raw {
		if rec.IsCancelled {
			continue
		}
		ev, err := c.normalize(rec)
		if err != nil {
			c.logger.Warn("dropping event with unusable timestamps",
				"subject", rec.Subject, logging.Err(err))
			continue
		}
		if !ev.HasParticipant(mailbox) {
			continue
		}
		events = append(events, ev)
	}

	c.logger.Debug("calendar window fetched",
		logging.MailboxHash(mailbox),
		"raw", len(raw),
		"retained", len(events))
	return events, nil
}

// fetchPages accumulates every raw event record in the window before any
// filtering happens, so that filtering can never be short-circuited by a
// page boundary.
func (c *Client) fetchPages(ctx context.Context, mailbox string, startUTC, endUTC time.Time) ([]graphEvent, error) {
	query := url.Values{}
	query.Set("startDateTime", startUTC.UTC().Format(time.RFC3339))
	query.Set("endDateTime", endUTC.UTC().Format(time.RFC3339))
	query.Set("$select", selectFields)
	query.Set("$orderby", "start/dateTime")
	query.Set("$top", strconv.Itoa(c.pageSize))

	next := fmt.Sprintf("%s/users/%s/calendarView?%s",
		c.baseURL, url.PathEscape(mailbox), query.Encode())

	var raw []graphEvent
	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("calendarView pagination exceeded %d pages", maxPages)
		}

		resp, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		raw = append(raw, resp.Value...)
		next = resp.NextLink
	}
	return raw, nil
}

// getPage performs a single calendarView page request.
func (c *Client) getPage(ctx context.Context, pageURL string) (*calendarViewResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	// Ask the server to render event times in the target timezone. The
	// per-event timeZone field is still honored during normalization, since
	// the provider's value can diverge from the preference.
	req.Header.Set("Prefer", fmt.Sprintf("outlook.timezone=%q", c.tzName))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendarView request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized {
			// The token was rejected; force a fresh exchange next time.
			c.tokens.Invalidate()
		}
		return nil, &calendar.UpstreamError{
			Op:     "calendarView",
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}

	var page calendarViewResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode calendarView response: %w", err)
	}
	return &page, nil
}

// normalize converts a raw Graph record into a domain event in the target
// timezone.
func (c *Client) normalize(rec graphEvent) (calendar.Event, error) {
	start, err := parseGraphTime(rec.Start, c.loc)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseGraphTime(rec.End, c.loc)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("end: %w", err)
	}

	attendees := make([]calendar.Attendee, 0, len(rec.Attendees))
	for _, a := range rec.Attendees {
		attendees = append(attendees, calendar.Attendee{
			DisplayName: a.EmailAddress.Name,
			Email:       a.EmailAddress.Address,
		})
	}

	return calendar.Event{
		Subject:  rec.Subject,
		Start:    start,
		End:      end,
		Location: rec.Location.DisplayName,
		Organizer: calendar.Attendee{
			DisplayName: rec.Organizer.EmailAddress.Name,
			Email:       rec.Organizer.EmailAddress.Address,
			Organizer:   true,
		},
		Attendees: attendees,
		Cancelled: rec.IsCancelled,
	}, nil
}
