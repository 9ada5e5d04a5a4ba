package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultNewsAPIEndpoint is the production NewsAPI everything endpoint.
const DefaultNewsAPIEndpoint = "https://newsapi.org/v2/everything"

// NewsAPIProvider queries the NewsAPI article search.
type NewsAPIProvider struct {
	endpoint string
	key      string
	client   *http.Client
}

// NewsAPIOption customizes a NewsAPIProvider.
type NewsAPIOption func(*NewsAPIProvider)

// WithNewsAPIEndpoint overrides the API endpoint. Used in tests.
func WithNewsAPIEndpoint(endpoint string) NewsAPIOption {
	return func(p *NewsAPIProvider) { p.endpoint = endpoint }
}

// WithNewsAPIHTTPClient sets the HTTP client.
func WithNewsAPIHTTPClient(client *http.Client) NewsAPIOption {
	return func(p *NewsAPIProvider) { p.client = client }
}

// NewNewsAPIProvider creates a NewsAPI provider with the given API key.
func NewNewsAPIProvider(key string, opts ...NewsAPIOption) *NewsAPIProvider {
	p := &NewsAPIProvider{
		endpoint: DefaultNewsAPIEndpoint,
		key:      key,
		client:   &http.Client{Timeout: defaultSearchTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *NewsAPIProvider) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"articles"`
}

// Search implements Provider.
func (p *NewsAPIProvider) Search(ctx context.Context, query string, maxItems int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(maxItems))
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.key)
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

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "failed to decode response", Err: err}
	}
	if payload.Status != "ok" {
		return nil, &ProviderError{
			Provider: p.Name(),
			Message:  fmt.Sprintf("%s: %s", payload.Code, payload.Message),
		}
	}

	candidates := make([]Candidate, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		if item.URL == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Description,
		})
		if len(candidates) == maxItems {
			break
		}
	}
	return candidates, nil
}
