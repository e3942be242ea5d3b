// Package scraper runs page operations in pooled headless-browser tabs.
package scraper

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/pagewalk/config"
	"github.com/use-agent/pagewalk/engine"
	"github.com/use-agent/pagewalk/models"
)

// chromeSwitches are boolean switches that hide automation and keep
// background tabs from being throttled while a walk is in progress.
var chromeSwitches = []flags.Flag{
	"disable-popup-blocking",
	"disable-renderer-backgrounding",
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-component-update",
	"disable-default-apps",
	"disable-dev-shm-usage",
	"disable-extensions",
	"no-first-run",
}

// Scraper owns the browser and its tab pool. It is safe for concurrent use;
// each operation borrows one tab for its whole duration.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	engineCfg   config.EngineConfig
	httpEngine  engine.Engine
	activePages atomic.Int32
}

// NewScraper launches the browser and prepares a pool of cfg.Browser.MaxPages tabs.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	browser, err := launchBrowser(cfg.Browser)
	if err != nil {
		return nil, err
	}

	slog.Info("page pool created", "maxPages", cfg.Browser.MaxPages)
	return &Scraper{
		browser:    browser,
		pagePool:   rod.NewPagePool(cfg.Browser.MaxPages),
		browserCfg: cfg.Browser,
		scraperCfg: cfg.Scraper,
		engineCfg:  cfg.Engine,
		httpEngine: engine.NewHTTPEngine(cfg.Browser.DefaultProxy),
	}, nil
}

func launchBrowser(cfg config.BrowserConfig) (*rod.Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	l.Delete("enable-automation")
	l.Set("disable-blink-features", "AutomationControlled")
	l.Set("disable-features", "AudioServiceOutOfProcess,TranslateUI")
	for _, f := range chromeSwitches {
		l.Set(f)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	return browser, nil
}

// Stats returns a snapshot of the pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close closes every pooled tab and then the browser process.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down", "activePages", s.activePages.Load())
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	slog.Info("scraper shutdown complete")
}
