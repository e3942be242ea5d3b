// Package retry reissues a failed operation a fixed number of times with a
// fixed delay between attempts.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/pagewalk/models"
)

// Policy describes how often and how patiently an operation is reissued.
type Policy struct {
	// MaxRetries is the number of reissues after the first attempt.
	MaxRetries int

	// Delay is the pause before each reissue.
	Delay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// nil retries everything except configuration errors.
	Retryable func(error) bool
}

// FromFallback builds the Policy requested by a fallback of strategy "retry".
// Unset counts read as zero; Fallback.Defaults fills them beforehand.
func FromFallback(f models.Fallback) Policy {
	var p Policy
	if f.MaxRetries != nil {
		p.MaxRetries = *f.MaxRetries
	}
	if f.RetryDelayMs != nil {
		p.Delay = time.Duration(*f.RetryDelayMs) * time.Millisecond
	}
	return p
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return !models.IsInvalidInput(err)
}

// Do calls op until it succeeds, returns a non-retryable error, the retries
// are exhausted or ctx is done. It returns the number of attempts made and
// the last error.
func Do(ctx context.Context, p Policy, name string, op func(ctx context.Context) error) (int, error) {
	var err error
	attempts := 0
	for {
		attempts++
		if err = op(ctx); err == nil {
			if attempts > 1 {
				slog.Info("operation succeeded after retry", "operation", name, "attempt", attempts)
			}
			return attempts, nil
		}
		if !p.retryable(err) || attempts > p.MaxRetries {
			return attempts, err
		}

		slog.Warn("operation failed, retrying",
			"operation", name,
			"attempt", attempts,
			"delay", p.Delay,
			"error", err,
		)
		if p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempts, err
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return attempts, err
		}
	}
}
