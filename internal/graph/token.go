package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/brieflab/daybrief/internal/calendar"
	"github.com/brieflab/daybrief/internal/instrumentation"
	"github.com/brieflab/daybrief/internal/logging"
)

const (
	// tokenURLTemplate is the Microsoft identity platform v2 token endpoint.
	tokenURLTemplate = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	// defaultScope requests all application permissions consented for Graph.
	defaultScope = "https://graph.microsoft.com/.default"

	// DefaultExpiryMargin is how long before expiry a cached token is
	// treated as stale and refreshed.
	DefaultExpiryMargin = 60 * time.Second

	// DefaultTokenTimeout bounds a single token exchange HTTP call.
	DefaultTokenTimeout = 10 * time.Second

	// tokenExchangeRetries is the number of extra attempts after a
	// transport failure. Credential rejections are never retried.
	tokenExchangeRetries = 1
)

// TokenCache obtains and caches a client-credentials access token for the
// Graph API. It holds at most one token; refreshes are single-flight across
// concurrent callers.
type TokenCache struct {
	conf    *clientcredentials.Config
	client  *http.Client
	margin  time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	mu    sync.Mutex
	token *oauth2.Token
}

// TokenCacheOption customizes a TokenCache.
type TokenCacheOption func(*TokenCache)

// WithTokenURL overrides the token endpoint URL. Used in tests.
func WithTokenURL(url string) TokenCacheOption {
	return func(c *TokenCache) { c.conf.TokenURL = url }
}

// WithTokenHTTPClient sets the HTTP client used for token exchanges.
func WithTokenHTTPClient(client *http.Client) TokenCacheOption {
	return func(c *TokenCache) { c.client = client }
}

// WithExpiryMargin sets the refresh safety margin.
func WithExpiryMargin(margin time.Duration) TokenCacheOption {
	return func(c *TokenCache) { c.margin = margin }
}

// WithTokenClock overrides the clock. Used in tests.
func WithTokenClock(now func() time.Time) TokenCacheOption {
	return func(c *TokenCache) { c.now = now }
}

// WithTokenLogger sets the logger.
func WithTokenLogger(logger *slog.Logger) TokenCacheOption {
	return func(c *TokenCache) { c.logger = logger }
}

// WithTokenMetrics sets the metrics recorder.
func WithTokenMetrics(metrics *instrumentation.Metrics) TokenCacheOption {
	return func(c *TokenCache) { c.metrics = metrics }
}

// NewTokenCache creates a token cache for the given tenant and client
// credentials.
func NewTokenCache(tenantID, clientID, clientSecret string, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     fmt.Sprintf(tokenURLTemplate, tenantID),
			Scopes:       []string{defaultScope},
		},
		client: &http.Client{Timeout: DefaultTokenTimeout},
		margin: DefaultExpiryMargin,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a bearer token for the Graph API, refreshing it when the
// cached one is absent or expires within the safety margin. Concurrent
// callers share a single exchange.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid() {
		return c.token.AccessToken, nil
	}

	token, err := c.exchange(ctx)
	if err != nil {
		c.metrics.RecordTokenRefresh(ctx, logging.StatusError)
		return "", err
	}

	c.token = token
	c.metrics.RecordTokenRefresh(ctx, logging.StatusSuccess)
	c.logger.Debug("access token refreshed",
		"token", logging.SanitizeToken(token.AccessToken),
		"expiry", token.Expiry)
	return token.AccessToken, nil
}

// Invalidate drops the cached token so the next call performs a fresh
// exchange. Called after the calendar API rejects a request with 401.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

// valid reports whether the cached token can still be used.
// Callers must hold c.mu.
func (c *TokenCache) valid() bool {
	if c.token == nil || c.token.AccessToken == "" {
		return false
	}
	if c.token.Expiry.IsZero() {
		return true
	}
	return c.now().Add(c.margin).Before(c.token.Expiry)
}

// exchange performs the client-credentials token exchange with a bounded
// retry on transport failures. Callers must hold c.mu.
func (c *TokenCache) exchange(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	var lastErr error
	for attempt := 0; attempt <= tokenExchangeRetries; attempt++ {
		token, err := c.conf.Token(ctx)
		if err == nil {
			return token, nil
		}

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The endpoint answered and rejected the credentials;
			// retrying cannot help.
			return nil, &calendar.AuthError{
				Status:  retrieveErr.Response.StatusCode,
				Message: oauthErrorMessage(retrieveErr),
				Err:     err,
			}
		}

		if ctx.Err() != nil {
			return nil, &calendar.AuthError{Message: "token exchange cancelled", Err: ctx.Err()}
		}

		lastErr = err
		c.logger.Warn("token exchange attempt failed", "attempt", attempt+1, logging.Err(err))
	}

	return nil, &calendar.AuthError{Message: "token endpoint unreachable", Err: lastErr}
}

// oauthErrorMessage extracts a safe, human-readable message from a token
// endpoint rejection. The response body never echoes the client secret.
func oauthErrorMessage(err *oauth2.RetrieveError) string {
	if err.ErrorDescription != "" {
		if err.ErrorCode != "" {
			return err.ErrorCode + ": " + err.ErrorDescription
		}
		return err.ErrorDescription
	}
	if err.ErrorCode != "" {
		return err.ErrorCode
	}
	body := strings.TrimSpace(string(err.Body))
	if len(body) > 256 {
		body = body[:256]
	}
	if body == "" {
		return "identity provider rejected the client credentials"
	}
	return body
}
