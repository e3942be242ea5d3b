package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/scraper"
)

// Script returns a handler for POST /api/v1/script.
//
// A script that throws is not an HTTP failure: the response is 200 with
// success=false, data=null and the script's error.
func Script(sc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := newCall(c, "script")

		var req models.ScriptRequest
		if !k.bind(&req) {
			return
		}
		req.Defaults()
		k.fallback = req.Options.Fallback

		var res *scraper.ScriptResult
		ok := k.run(func(ctx context.Context) error {
			var err error
			res, err = sc.DoScript(ctx, &req)
			return err
		})
		if !ok {
			return
		}

		resp := models.ScriptResponse{
			Success:   res.ScriptError == "",
			RequestID: k.id,
			Data:      res.Value,
			Timing: k.timing(models.TimingInfo{
				NavigationMs: res.Timing.NavigationMs,
				OperationMs:  res.Timing.OperationMs,
			}),
		}
		if res.ScriptError != "" {
			resp.ScriptError = res.ScriptError
			resp.Error = &models.ErrorDetail{Code: models.ErrCodeScriptFailed, Message: res.ScriptError}
		}
		c.JSON(http.StatusOK, resp)
	}
}
