package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// degradedAt is the share of busy tabs above which health reports "degraded".
const degradedAt = 0.8

// Health serves GET /api/v1/health with the tab pool's utilisation.
func Health(sc Service, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sc.Stats()

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*degradedAt) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   Version,
		})
	}
}
