package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/scraper"
)

// Paginate returns a handler for POST /api/v1/paginate.
func Paginate(sc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := newCall(c, "paginate")

		var req models.PaginateRequest
		if !k.bind(&req) {
			return
		}
		req.Defaults()
		k.fallback = req.Options.Fallback

		var res *scraper.PaginateResult
		ok := k.run(func(ctx context.Context) error {
			var err error
			res, err = sc.DoPaginate(ctx, &req)
			return err
		})
		if !ok {
			return
		}

		records := res.Records
		if records == nil {
			records = []models.PageRecord{}
		}
		c.JSON(http.StatusOK, models.PaginateResponse{
			Success:    true,
			RequestID:  k.id,
			Data:       records,
			PageCount:  res.PagesVisited,
			TotalItems: res.TotalRecords,
			Timing: k.timing(models.TimingInfo{
				NavigationMs: res.Timing.NavigationMs,
				OperationMs:  res.Timing.OperationMs,
			}),
		})
	}
}
