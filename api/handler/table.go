package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/scraper"
)

// Table returns a handler for POST /api/v1/table.
func Table(sc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := newCall(c, "table")

		var req models.TableRequest
		if !k.bind(&req) {
			return
		}
		req.Defaults()
		k.fallback = req.Options.Fallback

		if req.HeadersFrom == models.HeadersFromManual && len(req.ManualHeaders) == 0 {
			k.fail(models.NewInvalidInput("manual_headers is required when headers_from is %q", models.HeadersFromManual))
			return
		}

		var res *scraper.TableResult
		ok := k.run(func(ctx context.Context) error {
			var err error
			res, err = sc.DoTable(ctx, &req)
			return err
		})
		if !ok {
			return
		}

		c.JSON(http.StatusOK, models.TableResponse{
			Success:   true,
			RequestID: k.id,
			Data:      res.Rows,
			Headers:   res.Headers,
			RowCount:  len(res.Rows),
			Timing: k.timing(models.TimingInfo{
				NavigationMs: res.Timing.NavigationMs,
				OperationMs:  res.Timing.OperationMs,
			}),
		})
	}
}
