package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultBingEndpoint is the production Bing News Search v7 endpoint.
	DefaultBingEndpoint = "https://api.bing.microsoft.com/v7.0/news/search"

	// defaultSearchTimeout bounds a single provider request.
	defaultSearchTimeout = 10 * time.Second

	// maxProviderErrorBody limits how much of an upstream error body is
	// retained in errors.
	maxProviderErrorBody = 256
)

// BingProvider queries the Bing News Search API.
type BingProvider struct {
	endpoint string
	key      string
	market   string
	client   *http.Client
}

// BingOption customizes a BingProvider.
type BingOption func(*BingProvider)

// WithBingEndpoint overrides the API endpoint. Used in tests.
func WithBingEndpoint(endpoint string) BingOption {
	return func(p *BingProvider) { p.endpoint = endpoint }
}

// WithBingHTTPClient sets the HTTP client.
func WithBingHTTPClient(client *http.Client) BingOption {
	return func(p *BingProvider) { p.client = client }
}

// WithBingMarket sets the mkt query parameter.
func WithBingMarket(market string) BingOption {
	return func(p *BingProvider) { p.market = market }
}

// NewBingProvider creates a Bing News provider with the given subscription
// key.
func NewBingProvider(key string, opts ...BingOption) *BingProvider {
	p := &BingProvider{
		endpoint: DefaultBingEndpoint,
		key:      key,
		market:   "en-US",
		client:   &http.Client{Timeout: defaultSearchTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *BingProvider) Name() string { return "bing" }

type bingResponse struct {
	Value []struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"value"`
}

// Search implements Provider.
func (p *BingProvider) Search(ctx context.Context, query string, maxItems int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxItems))
	params.Set("mkt", p.market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProviderErrorBody))
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: string(body)}
	}

	var payload bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "failed to decode response", Err: err}
	}

	candidates := make([]Candidate, 0, len(payload.Value))
	for _, item := range payload.Value {
		if item.URL == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:   item.Name,
			URL:     item.URL,
			Snippet: item.Description,
		})
		if len(candidates) == maxItems {
			break
		}
	}
	return candidates, nil
}
