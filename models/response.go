package models

// FallbackResponse replaces an operation's response when it failed and the
// request asked for "default_value" or "retry" handling.
type FallbackResponse struct {
	Success   bool         `json:"success"`
	RequestID string       `json:"request_id,omitempty"`
	Result    *string      `json:"result,omitempty"`
	Attempts  int          `json:"attempts"`
	Timing    TimingInfo   `json:"timing"`
	Error     *ErrorDetail `json:"error"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent opening and rendering the first page.
	NavigationMs int64 `json:"navigation_ms,omitempty"`

	// OperationMs is the time spent in the operation itself.
	OperationMs int64 `json:"operation_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// ErrorResponse is written when a request fails before or outside any
// operation-specific response (bad input, auth, rate limiting).
type ErrorResponse struct {
	Success   bool         `json:"success"`
	RequestID string       `json:"request_id,omitempty"`
	Timing    *TimingInfo  `json:"timing,omitempty"`
	Error     *ErrorDetail `json:"error"`
}
