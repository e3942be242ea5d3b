package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/pagewalk/models"
	"github.com/ysmood/gson"
)

// operation is the work an endpoint performs on a loaded page. p is already
// bound to the request context.
type operation func(ctx context.Context, p *rod.Page) error

// requestTimeout converts the target's timeout to a duration capped by the
// configured maximum.
func (s *Scraper) requestTimeout(t *models.Target) time.Duration {
	timeout := time.Duration(t.Timeout) * time.Second
	if timeout <= 0 || timeout > s.scraperCfg.MaxTimeout {
		timeout = s.scraperCfg.MaxTimeout
	}
	return timeout
}

// withPage opens t.URL in a pooled tab, prepares it and runs op on it.
//
// The tab is primed (stealth, headers, resource blocking) before navigation,
// since those only affect loads that start after they are installed. Release
// uses the tab without the request context so it still runs past the
// deadline.
func (s *Scraper) withPage(ctx context.Context, t *models.Target, op operation) (Timing, error) {
	var timing Timing

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout(t))
	defer cancel()

	page, err := s.acquire()
	if err != nil {
		return timing, err
	}
	defer s.release(page)

	unprime := s.prime(page, t)
	defer unprime()

	p := page.Context(ctx)

	loadStart := time.Now()
	if err := s.navigate(ctx, p, t); err != nil {
		return timing, err
	}
	if t.RemoveOverlays {
		_, _ = p.Eval(overlayScript)
	}
	if err := executeActions(ctx, page, t.Actions); err != nil {
		return timing, err
	}
	timing.NavigationMs = time.Since(loadStart).Milliseconds()

	opStart := time.Now()
	err = op(ctx, p)
	timing.OperationMs = time.Since(opStart).Milliseconds()
	return timing, err
}

// acquire borrows a tab, creating one when the pool has capacity left.
func (s *Scraper) acquire() (*rod.Page, error) {
	s.activePages.Add(1)
	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		s.activePages.Add(-1)
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	return page, nil
}

// release blanks the tab to drop the previous document and returns it.
func (s *Scraper) release(page *rod.Page) {
	if err := page.Navigate("about:blank"); err != nil {
		slog.Warn("release: about:blank failed", "error", err)
	}
	s.pagePool.Put(page)
	s.activePages.Add(-1)
}

// prime installs the per-request page setup and returns a func that
// removes it again, so a pooled tab carries nothing into the next request.
func (s *Scraper) prime(page *rod.Page, t *models.Target) func() {
	var undo []func()

	if t.Stealth {
		remove, err := page.EvalOnNewDocument(stealth.JS)
		if err != nil {
			slog.Warn("stealth injection failed, continuing without it", "error", err)
		} else {
			undo = append(undo, func() { _ = remove() })
		}
	}
	if headers := buildHeaders(t); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
		undo = append(undo, func() {
			_ = proto.NetworkSetExtraHTTPHeaders{Headers: proto.NetworkHeaders{}}.Call(page)
		})
	}
	if router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, t.BlockAds); router != nil {
		undo = append(undo, func() { _ = router.Stop() })
	}

	return func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
}

// navigate loads t.URL and waits for the page to settle. The idle waiter is
// registered before Navigate so in-flight requests of the load are seen.
// Lifecycle events are used rather than WaitRequestIdle, which relies on the
// Fetch domain and conflicts with the hijack router.
func (s *Scraper) navigate(ctx context.Context, p *rod.Page, t *models.Target) error {
	idle := t.WaitForNetworkIdle == nil || *t.WaitForNetworkIdle

	var waitIdle func()
	waitCtx, waitCancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
	defer waitCancel()
	if idle {
		waitIdle = p.Context(waitCtx).WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	}

	if err := p.Navigate(t.URL); err != nil {
		return categorizeError(err, "navigation to target URL failed")
	}

	if waitIdle != nil {
		waitIdle()
		if waitCtx.Err() != nil && ctx.Err() == nil {
			slog.Debug("network did not go idle, proceeding with current DOM", "url", t.URL)
		}
	} else if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr,
		)
	}
	if err := ctx.Err(); err != nil {
		return categorizeError(err, "page did not load before the deadline")
	}
	return nil
}

// buildHeaders merges the request's headers with a Google search Referer,
// which the request may override.
func buildHeaders(t *models.Target) map[string]string {
	headers := make(map[string]string, len(t.Headers)+1)
	if _, hasReferer := t.Headers["Referer"]; !hasReferer {
		if u, err := url.Parse(t.URL); err == nil && u.Hostname() != "" {
			headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range t.Headers {
		headers[k] = v
	}
	return headers
}

// evalStringOrEmpty returns the string result of js, or "" if it fails.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts headers to the CDP header map.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// overlayScript removes fixed or sticky layers that sit above the content,
// which is where cookie banners and signup popups live.
const overlayScript = `() => {
	for (const el of document.querySelectorAll('*')) {
		const style = window.getComputedStyle(el);
		if (style.position !== 'fixed' && style.position !== 'sticky') continue;
		if (parseInt(style.zIndex, 10) >= 900 || style.zIndex === 'auto') el.remove();
	}
	const hints = ['cookie', 'consent', 'overlay', 'popup', 'gdpr'];
	for (const hint of hints) {
		document.querySelectorAll('[class*="' + hint + '"], [id*="' + hint + '"]').forEach(el => {
			if (['fixed', 'sticky', 'absolute'].includes(window.getComputedStyle(el).position)) el.remove();
		});
	}
	document.documentElement.style.overflow = '';
	document.body.style.overflow = '';
}`

// categorizeError gives err a code the API layer can map to a status.
// Errors that already carry one pass through.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
