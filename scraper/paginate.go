package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/pagewalk/engine"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/paginate"
)

// DoPaginate walks the target page by page and applies the request's
// extraction rules to each page. Rule configuration errors are returned
// before any page is opened; selector syntax is checked before the walk
// starts, by cascadia in http mode and by the page itself in browser mode.
func (s *Scraper) DoPaginate(ctx context.Context, req *models.PaginateRequest) (*PaginateResult, error) {
	if err := paginate.Validate(req.DataSelectors, req.PaginationSelector, req.MaxPages); err != nil {
		return nil, err
	}

	extractor := &paginate.Extractor{NavigationTimeout: s.paginationWait(req)}

	if req.FetchMode == models.FetchModeHTTP {
		return s.paginateHTTP(ctx, req, extractor)
	}

	var res *paginate.Result
	timing, err := s.withPage(ctx, &req.Target, func(ctx context.Context, p *rod.Page) error {
		doc := &rodDocument{page: p}
		if err := paginate.CheckSelectors(req.DataSelectors, req.PaginationSelector, doc.selectorSyntax(ctx)); err != nil {
			return err
		}
		var runErr error
		res, runErr = extractor.Run(ctx, doc, req.DataSelectors, req.PaginationSelector, req.MaxPages)
		return runErr
	})
	if err != nil {
		return nil, categorizeError(err, "paginated scrape failed")
	}
	return &PaginateResult{Result: res, FetchMethod: models.FetchModeBrowser, Timing: timing}, nil
}

// paginateHTTP runs the walk over raw HTML responses. Following the control
// means fetching its href, so script-driven pagination is not supported.
func (s *Scraper) paginateHTTP(ctx context.Context, req *models.PaginateRequest, extractor *paginate.Extractor) (*PaginateResult, error) {
	if err := paginate.ValidateSelectors(req.DataSelectors, req.PaginationSelector); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout(&req.Target))
	defer cancel()

	var timing Timing
	navStart := time.Now()

	fetchReq := engine.FetchRequest{
		URL:     req.URL,
		Headers: buildHeaders(&req.Target),
		Timeout: s.engineCfg.HTTPTimeout,
	}
	first, err := s.httpEngine.Fetch(ctx, &fetchReq)
	if err != nil {
		return nil, categorizeError(err, "fetching the first page failed")
	}
	doc, err := paginate.NewStaticDocument(first.HTML, first.FinalURL, s.httpEngine, fetchReq)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to parse the first page", err)
	}
	timing.NavigationMs = time.Since(navStart).Milliseconds()

	opStart := time.Now()
	res, err := extractor.Run(ctx, doc, req.DataSelectors, req.PaginationSelector, req.MaxPages)
	if err != nil {
		return nil, err
	}
	timing.OperationMs = time.Since(opStart).Milliseconds()

	return &PaginateResult{Result: res, FetchMethod: models.FetchModeHTTP, Timing: timing}, nil
}

// paginationWait is the per-step navigation bound: the request's own value,
// or the configured default.
func (s *Scraper) paginationWait(req *models.PaginateRequest) time.Duration {
	if req.NavigationTimeoutMs > 0 {
		return time.Duration(req.NavigationTimeoutMs) * time.Millisecond
	}
	return s.scraperCfg.PaginationWait
}
