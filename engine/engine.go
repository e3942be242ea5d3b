// Package engine fetches pages without a browser.
package engine

import (
	"context"
	"time"
)

// Engine fetches raw HTML. Implementations must be safe for concurrent use.
type Engine interface {
	Name() string
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest describes one page fetch.
type FetchRequest struct {
	URL     string
	Headers map[string]string

	// Timeout bounds the fetch; zero leaves only the context deadline.
	Timeout time.Duration
}

// WithURL returns a copy of r aimed at url. Headers are shared.
func (r FetchRequest) WithURL(url string) *FetchRequest {
	r.URL = url
	return &r
}

// FetchResult is a fetched HTML page.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int

	// FinalURL is the address after redirects.
	FinalURL   string
	EngineName string
}
