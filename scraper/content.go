package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/pagewalk/engine"
	"github.com/use-agent/pagewalk/models"
)

// statusCodeJS reads the HTTP status of the main document without
// subscribing to network events, which would conflict with the hijack router.
const statusCodeJS = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length > 0) return entries[0].responseStatus || 0;
	} catch (e) {}
	return 0;
}`

// DoContent loads the target and returns its HTML for cleaning.
func (s *Scraper) DoContent(ctx context.Context, req *models.ContentRequest) (*PageResult, error) {
	if req.FetchMode == models.FetchModeHTTP {
		return s.contentHTTP(ctx, req)
	}

	out := &PageResult{FetchMethod: models.FetchModeBrowser}
	timing, err := s.withPage(ctx, &req.Target, func(ctx context.Context, p *rod.Page) error {
		html, err := p.HTML()
		if err != nil {
			return categorizeError(err, "failed to extract page HTML")
		}
		out.HTML = html
		out.Title = evalStringOrEmpty(p, `() => document.title`)
		out.FinalURL = evalStringOrEmpty(p, `() => window.location.href`)
		if res, err := p.Eval(statusCodeJS); err == nil {
			out.StatusCode = res.Value.Int()
		}
		return nil
	})
	if err != nil {
		return nil, categorizeError(err, "content scrape failed")
	}
	if out.FinalURL == "" {
		out.FinalURL = req.URL
	}
	out.Timing = timing
	return out, nil
}

func (s *Scraper) contentHTTP(ctx context.Context, req *models.ContentRequest) (*PageResult, error) {
	start := time.Now()
	res, err := s.httpEngine.Fetch(ctx, &engine.FetchRequest{
		URL:     req.URL,
		Headers: buildHeaders(&req.Target),
		Timeout: min(s.engineCfg.HTTPTimeout, s.requestTimeout(&req.Target)),
	})
	if err != nil {
		return nil, categorizeError(err, "http fetch failed")
	}
	return &PageResult{
		HTML:        res.HTML,
		Title:       res.Title,
		StatusCode:  res.StatusCode,
		FinalURL:    res.FinalURL,
		FetchMethod: models.FetchModeHTTP,
		Timing:      Timing{NavigationMs: time.Since(start).Milliseconds()},
	}, nil
}
