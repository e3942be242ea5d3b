package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/binary"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/scraper"
)

// Screenshot returns a handler for POST /api/v1/screenshot.
//
// An element that cannot be captured yields 200 with success=false and no
// binary, so callers can tell a missing element from a failed page load.
func Screenshot(sc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := newCall(c, "screenshot")

		var req models.ScreenshotRequest
		if !k.bind(&req) {
			return
		}
		req.Defaults()
		k.fallback = req.Options.Fallback

		var res *scraper.CaptureResult
		ok := k.run(func(ctx context.Context) error {
			var err error
			res, err = sc.DoScreenshot(ctx, &req)
			return err
		})
		if !ok {
			return
		}

		resp := models.CaptureResponse{
			Success:   true,
			RequestID: k.id,
			Timing: k.timing(models.TimingInfo{
				NavigationMs: res.Timing.NavigationMs,
				OperationMs:  res.Timing.OperationMs,
			}),
		}
		if *req.FullPage || req.ElementSelector == "" {
			resp.FullPage = req.FullPage
		} else {
			resp.TargetElement = req.ElementSelector
		}

		if res.ElementError != "" {
			resp.Success = false
			resp.Error = &models.ErrorDetail{Code: models.ErrCodeCaptureFailed, Message: res.ElementError}
			c.JSON(http.StatusOK, resp)
			return
		}

		name := fmt.Sprintf("screenshot-%d.%s", time.Now().UnixMilli(), req.Format)
		resp.Binary = map[string]models.BinaryData{
			"screenshot": binary.Package(res.Data, name, res.MimeType),
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PDF returns a handler for POST /api/v1/pdf.
func PDF(sc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := newCall(c, "pdf")

		var req models.PDFRequest
		if !k.bind(&req) {
			return
		}
		req.Defaults()
		k.fallback = req.Options.Fallback

		var res *scraper.CaptureResult
		ok := k.run(func(ctx context.Context) error {
			var err error
			res, err = sc.DoPDF(ctx, &req)
			return err
		})
		if !ok {
			return
		}

		name := fmt.Sprintf("webpage-%d.pdf", time.Now().UnixMilli())
		c.JSON(http.StatusOK, models.CaptureResponse{
			Success:   true,
			RequestID: k.id,
			Binary: map[string]models.BinaryData{
				"pdf": binary.Package(res.Data, name, res.MimeType),
			},
			PDFOptions: &req.PDF,
			Timing: k.timing(models.TimingInfo{
				NavigationMs: res.Timing.NavigationMs,
				OperationMs:  res.Timing.OperationMs,
			}),
		})
	}
}
