package search

import (
	"fmt"
	"log/slog"
	"strings"
)

// Provider names accepted by NewProvider.
const (
	ProviderBing    = "bing"
	ProviderNewsAPI = "newsapi"
	ProviderStub    = "stub"
)

// NewProvider selects a search provider by name. A real provider without
// its API key degrades to the stub with a warning instead of failing, so
// a half-configured environment still produces a briefing.
func NewProvider(name, apiKey string, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderStub, "":
		return NewStubProvider(), nil
	case ProviderBing:
		if strings.TrimSpace(apiKey) == "" {
			logger.Warn("search provider selected without API key, using stub", "provider", ProviderBing)
			return NewStubProvider(), nil
		}
		return NewBingProvider(apiKey), nil
	case ProviderNewsAPI:
		if strings.TrimSpace(apiKey) == "" {
			logger.Warn("search provider selected without API key, using stub", "provider", ProviderNewsAPI)
			return NewStubProvider(), nil
		}
		return NewNewsAPIProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", name)
	}
}
