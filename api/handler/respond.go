package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/pagewalk/models"
	"github.com/use-agent/pagewalk/retry"
)

// call tracks one API request: its id, start time and fallback strategy.
type call struct {
	c        *gin.Context
	id       string
	name     string
	start    time.Time
	fallback models.Fallback
}

func newCall(c *gin.Context, name string) *call {
	return &call{c: c, id: uuid.NewString(), name: name, start: time.Now()}
}

func (k *call) timing(t models.TimingInfo) models.TimingInfo {
	t.TotalMs = time.Since(k.start).Milliseconds()
	return t
}

// bind parses the JSON body into req. On failure it writes a 400 and
// returns false.
func (k *call) bind(req any) bool {
	if err := k.c.ShouldBindJSON(req); err != nil {
		k.c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success:   false,
			RequestID: k.id,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: err.Error(),
			},
		})
		return false
	}
	return true
}

// run executes op under the request's fallback strategy and reports whether
// it succeeded. When it returns false the response has been written.
//
//   - "error":         the failure is mapped to an HTTP error status.
//   - "default_value": 200 with success=false and the configured result.
//   - "retry":         op is reissued; once retries are exhausted, 200 with
//     success=false and the last error.
//
// Configuration errors bypass the fallback and are always a 400.
func (k *call) run(op func(ctx context.Context) error) bool {
	ctx := k.c.Request.Context()

	switch k.fallback.Strategy {
	case models.FallbackRetry:
		policy := retry.FromFallback(k.fallback)
		policy.Retryable = retryable
		attempts, err := retry.Do(ctx, policy, k.name, op)
		if err == nil {
			return true
		}
		if models.IsInvalidInput(err) {
			k.fail(err)
			return false
		}
		se := models.AsScrapeError(err)
		k.c.JSON(http.StatusOK, models.FallbackResponse{
			Success:   false,
			RequestID: k.id,
			Attempts:  attempts,
			Timing:    k.timing(models.TimingInfo{}),
			Error: &models.ErrorDetail{
				Code:    se.Code,
				Message: fmt.Sprintf("failed after %d retries: %s", attempts-1, se.Message),
			},
		})
		return false

	case models.FallbackDefaultValue:
		err := op(ctx)
		if err == nil {
			return true
		}
		if models.IsInvalidInput(err) {
			k.fail(err)
			return false
		}
		slog.Info("operation failed, returning default value", "operation", k.name, "error", err)
		value := k.fallback.DefaultValue
		k.c.JSON(http.StatusOK, models.FallbackResponse{
			Success:   false,
			RequestID: k.id,
			Result:    &value,
			Attempts:  1,
			Timing:    k.timing(models.TimingInfo{}),
			Error:     models.AsScrapeError(err).ToDetail(),
		})
		return false

	default:
		if err := op(ctx); err != nil {
			k.fail(err)
			return false
		}
		return true
	}
}

// fail maps err to the correct HTTP status code and writes a structured
// JSON error response.
func (k *call) fail(err error) {
	se := models.AsScrapeError(err)
	status := mapErrorToStatus(se)
	if status >= http.StatusInternalServerError {
		slog.Error("operation failed", "operation", k.name, "request_id", k.id, "error", err)
	}
	t := k.timing(models.TimingInfo{})
	k.c.JSON(status, models.ErrorResponse{
		Success:   false,
		RequestID: k.id,
		Timing:    &t,
		Error:     se.ToDetail(),
	})
}

// retryable rejects failures another attempt cannot fix: bad configuration
// and a client that has gone away.
func retryable(err error) bool {
	return !models.IsInvalidInput(err) && !errors.Is(err, context.Canceled)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeActionFailed, models.ErrCodeExtraction:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
