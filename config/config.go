// Package config loads service settings from PAGEWALK_* environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Engine    EngineConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 10

	// DefaultProxy is the proxy URL for all browser and HTTP requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// MaxTimeout caps the per-request timeout a client may ask for.
	MaxTimeout time.Duration // default: 300s

	// NavigationTimeout is the max time for the initial page.Navigate.
	NavigationTimeout time.Duration // default: 15s

	// PaginationWait bounds each click-and-wait step of a paginated scrape
	// when the request does not set its own.
	PaginationWait time.Duration // default: 30s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// EngineConfig controls the plain HTTP engine used by fetch_mode "http".
type EngineConfig struct {
	// HTTPTimeout is the deadline for a single HTTP fetch.
	HTTPTimeout time.Duration // default: 10s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the content response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from the environment. Unset or unparsable
// variables fall back to their defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: env("PAGEWALK_HOST", "0.0.0.0", asString),
			Port: env("PAGEWALK_PORT", 8080, strconv.Atoi),
			Mode: env("PAGEWALK_MODE", "release", asString),
		},
		Browser: BrowserConfig{
			Headless:     env("PAGEWALK_HEADLESS", true, strconv.ParseBool),
			MaxPages:     env("PAGEWALK_MAX_PAGES", 10, strconv.Atoi),
			DefaultProxy: os.Getenv("PAGEWALK_PROXY"),
			NoSandbox:    env("PAGEWALK_NO_SANDBOX", false, strconv.ParseBool),
			BrowserBin:   os.Getenv("PAGEWALK_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			MaxTimeout:           env("PAGEWALK_MAX_TIMEOUT", 300*time.Second, time.ParseDuration),
			NavigationTimeout:    env("PAGEWALK_NAV_TIMEOUT", 15*time.Second, time.ParseDuration),
			PaginationWait:       env("PAGEWALK_NAV_WAIT", 30*time.Second, time.ParseDuration),
			BlockedResourceTypes: env("PAGEWALK_BLOCKED_RESOURCES", []string{"Image", "Font", "Media"}, asList),
		},
		Engine: EngineConfig{
			HTTPTimeout: env("PAGEWALK_HTTP_TIMEOUT", 10*time.Second, time.ParseDuration),
		},
		Auth: AuthConfig{
			Enabled: env("PAGEWALK_AUTH_ENABLED", true, strconv.ParseBool),
			APIKeys: env("PAGEWALK_API_KEYS", []string(nil), asList),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: env("PAGEWALK_RATE_RPS", 2.0, asFloat),
			Burst:             env("PAGEWALK_RATE_BURST", 5, strconv.Atoi),
		},
		Cache: CacheConfig{
			MaxEntries: env("PAGEWALK_CACHE_MAX_ENTRIES", 500, strconv.Atoi),
		},
		Log: LogConfig{
			Level:  env("PAGEWALK_LOG_LEVEL", "info", asString),
			Format: env("PAGEWALK_LOG_FORMAT", "json", asString),
		},
	}
}

// env parses the variable named key, returning fallback when it is empty
// or does not parse.
func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func asString(s string) (string, error) { return s, nil }

func asFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// asList splits a comma-separated value, dropping blank items.
func asList(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
