package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/cache"
	"github.com/use-agent/pagewalk/cleaner"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/scraper"
)

// Content returns a handler for POST /api/v1/content.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when max_age is set.
//  3. Scraper.DoContent → rendered HTML + title   (navigation_ms)
//  4. Cleaner.Clean     → markdown/html/text       (operation_ms)
//  5. Title fallback, cache store, respond.
func Content(sc Service, cl *cleaner.Cleaner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := newCall(c, "content")

		var req models.ContentRequest
		if !k.bind(&req) {
			return
		}
		req.Defaults()
		k.fallback = req.Options.Fallback

		cacheKey, keyErr := contentCacheKey(&req)
		useCache := cc != nil && req.MaxAge > 0 && keyErr == nil
		if useCache {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.RequestID = k.id
				cached.CacheStatus = "hit"
				cached.Timing = k.timing(models.TimingInfo{})
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		var (
			page       *scraper.PageResult
			cleaned    *cleaner.Result
			cleaningMs int64
		)
		ok := k.run(func(ctx context.Context) error {
			var err error
			page, err = sc.DoContent(ctx, &req)
			if err != nil {
				return err
			}
			cleanStart := time.Now()
			cleaned, err = cl.Clean(page.HTML, page.FinalURL, req.OutputFormat, req.ExtractMode)
			cleaningMs = time.Since(cleanStart).Milliseconds()
			return err
		})
		if !ok {
			return
		}

		// Readability usually finds a better title; on raw passthrough it is
		// empty and document.title is the safety net.
		if cleaned.Metadata.Title == "" {
			cleaned.Metadata.Title = page.Title
		}

		resp := models.ContentResponse{
			Success:     true,
			RequestID:   k.id,
			StatusCode:  page.StatusCode,
			FinalURL:    page.FinalURL,
			Content:     cleaned.Content,
			Metadata:    cleaned.Metadata,
			FetchMethod: page.FetchMethod,
			Timing: k.timing(models.TimingInfo{
				NavigationMs: page.Timing.NavigationMs,
				OperationMs:  page.Timing.OperationMs + cleaningMs,
			}),
		}

		if useCache {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// contentCacheKey covers every request field that can change what the page
// renders, so a response fetched with credentials or after interactions is
// only served to requests that send the same.
func contentCacheKey(req *models.ContentRequest) (string, error) {
	shape, err := json.Marshal(struct {
		WaitForNetworkIdle *bool             `json:"w"`
		Stealth            bool              `json:"s"`
		BlockAds           bool              `json:"b"`
		RemoveOverlays     bool              `json:"o"`
		Headers            map[string]string `json:"h"`
		Actions            []models.Action   `json:"a"`
	}{
		req.WaitForNetworkIdle,
		req.Stealth,
		req.BlockAds,
		req.RemoveOverlays,
		req.Headers,
		req.Actions,
	})
	if err != nil {
		return "", err
	}
	return cache.Key(req.URL, req.FetchMode, req.OutputFormat, req.ExtractMode, string(shape)), nil
}
