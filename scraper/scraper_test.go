package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagewalk/config"
	"github.com/use-agent/pagewalk/engine"
	"github.com/use-agent/pagewalk/models"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), models.ErrCodeTimeout},
		{"canceled", context.Canceled, models.ErrCodeTimeout},
		{"other", errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeNavigation},
		{"typed passes through", models.NewScrapeError(models.ErrCodeCaptureFailed, "x", nil), models.ErrCodeCaptureFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categorizeError(tt.err, "msg").Code)
		})
	}
}

func TestCaptureError(t *testing.T) {
	assert.Equal(t, models.ErrCodeTimeout, captureError(context.DeadlineExceeded, "x").Code)
	assert.Equal(t, models.ErrCodeCaptureFailed, captureError(errors.New("boom"), "x").Code)
}

func TestPrintToPDF(t *testing.T) {
	bg := false
	req, err := printToPDF(models.PDFOptions{
		Format:          "Letter",
		Landscape:       true,
		PrintBackground: &bg,
		HeaderTemplate:  "<span>ignored</span>",
	})
	require.NoError(t, err)
	assert.True(t, req.Landscape)
	assert.False(t, req.PrintBackground)
	assert.Equal(t, 8.5, *req.PaperWidth)
	assert.Equal(t, 11.0, *req.PaperHeight)
	assert.Equal(t, 1.0, *req.Scale)
	assert.Empty(t, req.HeaderTemplate)

	req, err = printToPDF(models.PDFOptions{Format: "A4", Scale: 0.5, DisplayHeaderFooter: true, FooterTemplate: "<b>f</b>"})
	require.NoError(t, err)
	assert.True(t, req.PrintBackground)
	assert.Equal(t, 0.5, *req.Scale)
	assert.Equal(t, "<b>f</b>", req.FooterTemplate)

	_, err = printToPDF(models.PDFOptions{Format: "B5"})
	assert.True(t, models.IsInvalidInput(err))
}

func TestDomainSet(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"stats.g.doubleclick.net", true},
		{"PAGEAD2.GOOGLESYNDICATION.COM", true},
		{"example.com", false},
		{"notdoubleclick.net", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, adDomains.contains(tt.host))
		})
	}
}

func TestResourceBlocker(t *testing.T) {
	b := newResourceBlocker([]string{"Image", "Bogus"}, true)
	assert.True(t, b.active())
	assert.True(t, b.shouldBlock(proto.NetworkResourceTypeImage, "https://example.com/a.png"))
	assert.True(t, b.shouldBlock(proto.NetworkResourceTypeScript, "https://www.googletagmanager.com/gtm.js"))
	assert.False(t, b.shouldBlock(proto.NetworkResourceTypeScript, "https://example.com/app.js"))
	assert.False(t, b.shouldBlock(proto.NetworkResourceTypeDocument, "https://doubleclick.net/"))

	assert.False(t, newResourceBlocker(nil, false).active())
}

func TestBuildHeaders(t *testing.T) {
	h := buildHeaders(&models.Target{URL: "https://shop.example.com/list", Headers: map[string]string{"X-A": "1"}})
	assert.Equal(t, "https://www.google.com/search?q=shop.example.com", h["Referer"])
	assert.Equal(t, "1", h["X-A"])

	h = buildHeaders(&models.Target{URL: "https://example.com", Headers: map[string]string{"Referer": "https://r.example"}})
	assert.Equal(t, "https://r.example", h["Referer"])
}

func TestTimeouts(t *testing.T) {
	s := &Scraper{scraperCfg: config.ScraperConfig{MaxTimeout: 60 * time.Second, PaginationWait: 30 * time.Second}}

	assert.Equal(t, 20*time.Second, s.requestTimeout(&models.Target{Timeout: 20}))
	assert.Equal(t, 60*time.Second, s.requestTimeout(&models.Target{Timeout: 300}))
	assert.Equal(t, 60*time.Second, s.requestTimeout(&models.Target{}))

	assert.Equal(t, 30*time.Second, s.paginationWait(&models.PaginateRequest{}))
	assert.Equal(t, 500*time.Millisecond, s.paginationWait(&models.PaginateRequest{NavigationTimeoutMs: 500}))
}

func TestDoPaginate_RejectsConfigurationBeforeBrowserWork(t *testing.T) {
	// A zero Scraper has no browser; reaching it would panic.
	s := &Scraper{}
	_, err := s.DoPaginate(context.Background(), &models.PaginateRequest{
		Target:             models.Target{URL: "https://example.com"},
		PaginationSelector: ".next",
		MaxPages:           2,
		DataSelectors: []models.ExtractionRule{
			{FieldName: "href", Selector: "a", ExtractionType: models.ExtractAttribute},
		},
	})
	require.Error(t, err)
	assert.True(t, models.IsInvalidInput(err))
}

func TestDoPaginate_HTTPMode(t *testing.T) {
	pages := map[string]string{
		"/p1": `<html><body><h2>One</h2><a class="next" href="/p2">next</a></body></html>`,
		"/p2": `<html><body><h2>Two</h2><a class="next" href="/p3">next</a></body></html>`,
		"/p3": `<html><body><h2>Three</h2></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	s := &Scraper{
		httpEngine: engine.NewHTTPEngine(""),
		scraperCfg: config.ScraperConfig{MaxTimeout: 30 * time.Second, PaginationWait: 5 * time.Second},
		engineCfg:  config.EngineConfig{HTTPTimeout: 5 * time.Second},
	}
	res, err := s.DoPaginate(context.Background(), &models.PaginateRequest{
		Target:             models.Target{URL: srv.URL + "/p1", FetchMode: models.FetchModeHTTP},
		PaginationSelector: "a.next",
		MaxPages:           10,
		DataSelectors: []models.ExtractionRule{
			{FieldName: "heading", Selector: "h2", ExtractionType: models.ExtractText},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.FetchModeHTTP, res.FetchMethod)
	assert.Equal(t, 3, res.PagesVisited)
	require.Len(t, res.Records, 3)
	assert.Equal(t, []any{"Three"}, res.Records[2].Fields["heading"])
	assert.Equal(t, 3, res.Records[2].Page)
}

func TestDoPaginate_HTTPModeRejectsBadSelector(t *testing.T) {
	s := &Scraper{}
	_, err := s.DoPaginate(context.Background(), &models.PaginateRequest{
		Target:             models.Target{URL: "https://example.com", FetchMode: models.FetchModeHTTP},
		PaginationSelector: "a[",
		MaxPages:           1,
		DataSelectors:      []models.ExtractionRule{{FieldName: "t", Selector: "h1", ExtractionType: models.ExtractText}},
	})
	assert.True(t, models.IsInvalidInput(err))
}

func TestExecuteActions_UnknownType(t *testing.T) {
	err := executeActions(context.Background(), nil, []models.Action{{Type: "hover"}})
	require.Error(t, err)

	var se *models.ScrapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, models.ErrCodeActionFailed, se.Code)
	assert.Contains(t, se.Message, "action 0 (hover)")
}
