package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// Operation-specific codes.
	ErrCodeScriptFailed  = "SCRIPT_FAILED"
	ErrCodeCaptureFailed = "CAPTURE_FAILED"
	ErrCodeActionFailed  = "ACTION_FAILED"
	ErrCodeExtraction    = "CONTENT_EXTRACTION_FAILED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewInvalidInput is shorthand for a configuration error raised before any
// browser work starts.
func NewInvalidInput(format string, args ...any) *ScrapeError {
	return &ScrapeError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// AsScrapeError unwraps err into a *ScrapeError, wrapping unknown errors as
// ErrCodeInternal.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, err.Error(), err)
}

// IsInvalidInput reports whether err is a configuration error.
func IsInvalidInput(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == ErrCodeInvalidInput
}
