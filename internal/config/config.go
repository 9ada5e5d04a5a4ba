package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Calendar provider names accepted in CALENDAR_PROVIDER.
const (
	ProviderGraph = "graph"
	ProviderGCal  = "gcal"
)

// DefaultTimezone is the target timezone events are normalized to when
// TARGET_TIMEZONE is unset.
const DefaultTimezone = "America/New_York"

// GraphConfig holds the Microsoft identity platform credentials for the
// client-credentials flow.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// GoogleConfig holds service account credentials for the Google Calendar
// provider.
type GoogleConfig struct {
	CredentialsFile string
	Impersonate     string
}

// SearchConfig selects and authenticates the news search provider.
type SearchConfig struct {
	Provider string
	APIKey   string
}

// ResolverConfig tunes person resolution.
type ResolverConfig struct {
	Enabled         bool
	HighThreshold   float64
	MediumThreshold float64
	ShowMedium      bool
	CacheTTL        time.Duration
	Concurrency     int

	// NegativeKeywords maps a lowercased person name to extra negative
	// keywords, parsed from PEOPLE_NEGATIVE_KEYWORDS
	// ("name:kw1|kw2;other name:kw3").
	NegativeKeywords map[string][]string
}

// Config is the full runtime configuration, read from the environment.
type Config struct {
	CalendarProvider string
	Graph            GraphConfig
	Google           GoogleConfig
	Timezone         string
	AllowedMailboxes []string
	InternalDomains  []string
	Search           SearchConfig
	Resolver         ResolverConfig
}

// Load reads configuration from the environment. Values are defaulted
// but not validated; call Validate before use.
func Load() Config {
	return Config{
		CalendarProvider: getEnv("CALENDAR_PROVIDER", ProviderGraph),
		Graph: GraphConfig{
			TenantID:     getEnv("MS_TENANT_ID", ""),
			ClientID:     getEnv("MS_CLIENT_ID", ""),
			ClientSecret: getEnv("MS_CLIENT_SECRET", ""),
		},
		Google: GoogleConfig{
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			Impersonate:     getEnv("GOOGLE_IMPERSONATE", ""),
		},
		Timezone:         getEnv("TARGET_TIMEZONE", DefaultTimezone),
		AllowedMailboxes: getEnvList("ALLOWED_MAILBOXES"),
		InternalDomains:  getEnvList("INTERNAL_DOMAINS"),
		Search: SearchConfig{
			Provider: getEnv("SEARCH_PROVIDER", "stub"),
			APIKey:   getEnv("SEARCH_API_KEY", ""),
		},
		Resolver: ResolverConfig{
			Enabled:          getEnvBool("PEOPLE_NEWS_ENABLED", false),
			HighThreshold:    getEnvFloat("PEOPLE_CONFIDENCE_MIN", 0.75),
			MediumThreshold:  getEnvFloat("PEOPLE_CONFIDENCE_MEDIUM", 0.5),
			ShowMedium:       getEnvBool("PEOPLE_CONFIDENCE_SHOW_MEDIUM", true),
			CacheTTL:         time.Duration(getEnvInt("PEOPLE_CACHE_TTL_MIN", 120)) * time.Minute,
			Concurrency:      getEnvInt("ENRICH_CONCURRENCY", 4),
			NegativeKeywords: parseNegativeKeywords(getEnv("PEOPLE_NEGATIVE_KEYWORDS", "")),
		},
	}
}

// Validate checks the configuration for the selected providers.
func (c Config) Validate() error {
	switch c.CalendarProvider {
	case ProviderGraph:
		if c.Graph.TenantID == "" || c.Graph.ClientID == "" || c.Graph.ClientSecret == "" {
			return fmt.Errorf("calendar provider %q requires MS_TENANT_ID, MS_CLIENT_ID and MS_CLIENT_SECRET", ProviderGraph)
		}
	case ProviderGCal:
		if c.Google.CredentialsFile == "" {
			return fmt.Errorf("calendar provider %q requires GOOGLE_CREDENTIALS_FILE", ProviderGCal)
		}
	default:
		return fmt.Errorf("unknown calendar provider %q", c.CalendarProvider)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TARGET_TIMEZONE %q: %w", c.Timezone, err)
	}

	r := c.Resolver
	if r.HighThreshold < 0 || r.HighThreshold > 1 || r.MediumThreshold < 0 || r.MediumThreshold > 1 {
		return fmt.Errorf("confidence thresholds must be within [0, 1]")
	}
	if r.MediumThreshold > r.HighThreshold {
		return fmt.Errorf("PEOPLE_CONFIDENCE_MEDIUM (%v) must not exceed PEOPLE_CONFIDENCE_MIN (%v)",
			r.MediumThreshold, r.HighThreshold)
	}
	return nil
}

// parseNegativeKeywords parses "jane smith:actress|singer;john doe:boxer"
// into a per-person keyword map. Names are lowercased; malformed
// segments are dropped.
func parseNegativeKeywords(raw string) map[string][]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parsed := make(map[string][]string)
	for _, segment := range strings.Split(raw, ";") {
		name, keywords, ok := strings.Cut(segment, ":")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			continue
		}
		for _, kw := range strings.Split(keywords, "|") {
			if kw = strings.TrimSpace(kw); kw != "" {
				parsed[name] = append(parsed[name], kw)
			}
		}
	}
	if len(parsed) == 0 {
		return nil
	}
	return parsed
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
