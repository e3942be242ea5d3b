package handler

import (
	"context"

	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/scraper"
)

// Service is the browser work behind the API. *scraper.Scraper implements it.
type Service interface {
	Stats() models.PoolStats
	DoPaginate(ctx context.Context, req *models.PaginateRequest) (*scraper.PaginateResult, error)
	DoTable(ctx context.Context, req *models.TableRequest) (*scraper.TableResult, error)
	DoScreenshot(ctx context.Context, req *models.ScreenshotRequest) (*scraper.CaptureResult, error)
	DoPDF(ctx context.Context, req *models.PDFRequest) (*scraper.CaptureResult, error)
	DoScript(ctx context.Context, req *models.ScriptRequest) (*scraper.ScriptResult, error)
	DoContent(ctx context.Context, req *models.ContentRequest) (*scraper.PageResult, error)
}

var _ Service = (*scraper.Scraper)(nil)
