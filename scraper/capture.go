package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagewalk/cleaner"
	"github.com/use-agent/pagewalk/models"
	"github.com/ysmood/gson"
)

// elementWait bounds the wait for a screenshot's target element.
const elementWait = 5 * time.Second

// paperSizes maps PDF formats to paper width and height in inches.
var paperSizes = map[string][2]float64{
	"A3":      {11.69, 16.54},
	"A4":      {8.27, 11.69},
	"A5":      {5.83, 8.27},
	"Letter":  {8.5, 11},
	"Legal":   {8.5, 14},
	"Tabloid": {11, 17},
}

// screenshotFormats maps request formats to protocol values.
var screenshotFormats = map[string]proto.PageCaptureScreenshotFormat{
	"png":  proto.PageCaptureScreenshotFormatPng,
	"jpeg": proto.PageCaptureScreenshotFormatJpeg,
	"webp": proto.PageCaptureScreenshotFormatWebp,
}

// DoTable reads the table matched by req.TableSelector and parses it into
// rows keyed by column header.
func (s *Scraper) DoTable(ctx context.Context, req *models.TableRequest) (*TableResult, error) {
	var table *cleaner.Table
	timing, err := s.withPage(ctx, &req.Target, func(ctx context.Context, p *rod.Page) error {
		els, err := p.Elements(req.TableSelector)
		if err != nil {
			return categorizeError(err, "table lookup failed")
		}
		if len(els) == 0 {
			return models.NewScrapeError(models.ErrCodeExtraction,
				fmt.Sprintf("no table matches %q", req.TableSelector), nil)
		}
		outer, err := els[0].Property("outerHTML")
		if err != nil {
			return categorizeError(err, "failed to read table HTML")
		}
		table, err = cleaner.ParseTable(outer.Str(), cleaner.TableLayout{
			HeadersFrom:     req.HeadersFrom,
			RowSelector:     req.RowSelector,
			CellSelector:    req.CellSelector,
			HeaderSelectors: req.HeaderSelectors,
			ManualHeaders:   req.ManualHeaders,
		})
		if err != nil {
			return models.NewScrapeError(models.ErrCodeExtraction, "failed to parse table", err)
		}
		return nil
	})
	if err != nil {
		return nil, categorizeError(err, "table scrape failed")
	}
	return &TableResult{Table: table, Timing: timing}, nil
}

// DoScreenshot captures the full page, the viewport, or a single element.
// A missing element is reported in CaptureResult.ElementError rather than
// as an error.
func (s *Scraper) DoScreenshot(ctx context.Context, req *models.ScreenshotRequest) (*CaptureResult, error) {
	format, ok := screenshotFormats[req.Format]
	if !ok {
		return nil, models.NewInvalidInput("unsupported screenshot format %q", req.Format)
	}

	out := &CaptureResult{MimeType: "image/" + req.Format}
	timing, err := s.withPage(ctx, &req.Target, func(ctx context.Context, p *rod.Page) error {
		fullPage := req.FullPage == nil || *req.FullPage
		if !fullPage && req.ElementSelector != "" {
			data, elemErr := screenshotElement(p, req.ElementSelector, format, req.Quality)
			if elemErr != nil {
				if ctx.Err() != nil {
					return categorizeError(ctx.Err(), "screenshot timed out")
				}
				out.ElementError = fmt.Sprintf("element %q could not be captured: %v", req.ElementSelector, elemErr)
				return nil
			}
			out.Data = data
			return nil
		}

		shot := &proto.PageCaptureScreenshot{Format: format}
		if format != proto.PageCaptureScreenshotFormatPng {
			shot.Quality = gson.Int(req.Quality)
		}
		data, err := p.Screenshot(fullPage, shot)
		if err != nil {
			return captureError(err, "screenshot failed")
		}
		out.Data = data
		return nil
	})
	if err != nil {
		return nil, categorizeError(err, "screenshot failed")
	}
	out.Timing = timing
	return out, nil
}

func screenshotElement(p *rod.Page, selector string, format proto.PageCaptureScreenshotFormat, quality int) ([]byte, error) {
	el, err := p.Timeout(elementWait).Element(selector)
	if err != nil {
		return nil, err
	}
	if format == proto.PageCaptureScreenshotFormatPng {
		quality = 0
	}
	return el.CancelTimeout().Screenshot(format, quality)
}

// DoPDF prints the page with the request's print options.
func (s *Scraper) DoPDF(ctx context.Context, req *models.PDFRequest) (*CaptureResult, error) {
	printReq, err := printToPDF(req.PDF)
	if err != nil {
		return nil, err
	}

	out := &CaptureResult{MimeType: "application/pdf"}
	timing, err := s.withPage(ctx, &req.Target, func(ctx context.Context, p *rod.Page) error {
		stream, err := p.PDF(printReq)
		if err != nil {
			return captureError(err, "pdf generation failed")
		}
		data, err := io.ReadAll(stream)
		if err != nil {
			return captureError(err, "failed to read pdf stream")
		}
		out.Data = data
		return nil
	})
	if err != nil {
		return nil, categorizeError(err, "pdf generation failed")
	}
	out.Timing = timing
	return out, nil
}

// printToPDF converts request options to the protocol's print parameters.
func printToPDF(opts models.PDFOptions) (*proto.PagePrintToPDF, error) {
	size, ok := paperSizes[opts.Format]
	if !ok {
		return nil, models.NewInvalidInput("unsupported pdf format %q", opts.Format)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	req := &proto.PagePrintToPDF{
		Landscape:           opts.Landscape,
		DisplayHeaderFooter: opts.DisplayHeaderFooter,
		PrintBackground:     opts.PrintBackground == nil || *opts.PrintBackground,
		Scale:               gson.Num(scale),
		PaperWidth:          gson.Num(size[0]),
		PaperHeight:         gson.Num(size[1]),
	}
	if opts.DisplayHeaderFooter {
		req.HeaderTemplate = opts.HeaderTemplate
		req.FooterTemplate = opts.FooterTemplate
	}
	return req, nil
}

// captureError keeps deadline errors as timeouts and reports everything
// else as a capture failure.
func captureError(err error, msg string) *models.ScrapeError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return categorizeError(err, msg)
	}
	return models.NewScrapeError(models.ErrCodeCaptureFailed, msg, err)
}
