package models

// Fetch modes.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
)

// Fallback strategies applied when an operation fails.
const (
	FallbackError        = "error"
	FallbackDefaultValue = "default_value"
	FallbackRetry        = "retry"
)

// Target holds the navigation options shared by every operation.
// It is embedded in each request type so its fields appear at the top level
// of the JSON payload.
type Target struct {
	// URL is the page to open. Required.
	URL string `json:"url" binding:"required,url"`

	// WaitForNetworkIdle waits until the page has settled its network
	// requests before the operation runs. Default: true.
	WaitForNetworkIdle *bool `json:"wait_for_network_idle,omitempty"`

	// Timeout is the maximum duration in seconds for the whole operation.
	// Default: 30. Max: 300.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=300"`

	// Stealth enables anti-bot-detection evasions.
	Stealth bool `json:"stealth,omitempty"`

	// Headers are extra HTTP headers sent with every request of the page.
	Headers map[string]string `json:"headers,omitempty"`

	// BlockAds blocks requests to well-known ad and tracking domains.
	BlockAds bool `json:"block_ads,omitempty"`

	// FetchMode selects the document source: "browser" (default) renders
	// the page in headless Chrome, "http" parses the raw HTML response.
	// Only paginate and content honour "http".
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=browser http"`

	// RemoveOverlays strips fixed-position banners and popups (cookie
	// consent and similar) once the page has loaded. Browser mode only.
	RemoveOverlays bool `json:"remove_overlays,omitempty"`

	// Actions run in order after the page has loaded and before the
	// operation starts. Browser mode only.
	Actions []Action `json:"actions,omitempty" binding:"omitempty,max=20,dive"`
}

// Action is a browser interaction performed before an operation runs.
type Action struct {
	// Type is one of "wait", "click", "scroll" or "execute_js".
	Type string `json:"type" binding:"required,oneof=wait click scroll execute_js"`

	// Selector is the CSS selector for "wait" and "click".
	Selector string `json:"selector,omitempty"`

	// Milliseconds is the pause for a "wait" without a selector.
	Milliseconds int `json:"milliseconds,omitempty" binding:"omitempty,min=0,max=30000"`

	// Direction is "up" or "down" (default) for "scroll".
	Direction string `json:"direction,omitempty" binding:"omitempty,oneof=up down"`

	// Amount is the number of viewports to scroll. Default: 1.
	Amount int `json:"amount,omitempty" binding:"omitempty,min=0,max=50"`

	// Code is the JavaScript evaluated by "execute_js".
	Code string `json:"code,omitempty"`
}

// Defaults applies default values to unset fields.
func (t *Target) Defaults() {
	if t.WaitForNetworkIdle == nil {
		v := true
		t.WaitForNetworkIdle = &v
	}
	if t.Timeout == 0 {
		t.Timeout = 30
	}
	if t.FetchMode == "" {
		t.FetchMode = FetchModeBrowser
	}
}

// Options carries per-request behaviour that is not tied to one operation.
type Options struct {
	Fallback Fallback `json:"fallback"`
}

// Fallback decides what happens when an operation fails.
type Fallback struct {
	// Strategy is one of "error" (default), "default_value" or "retry".
	Strategy string `json:"strategy,omitempty" binding:"omitempty,oneof=error default_value retry"`

	// DefaultValue is returned as the result when Strategy is "default_value".
	DefaultValue string `json:"default_value,omitempty"`

	// MaxRetries is the number of reissues when Strategy is "retry".
	// Default: 3. An explicit 0 runs the operation once.
	MaxRetries *int `json:"max_retries,omitempty" binding:"omitempty,min=0,max=10"`

	// RetryDelayMs is the pause between attempts. Default: 1000.
	RetryDelayMs *int `json:"retry_delay_ms,omitempty" binding:"omitempty,min=0,max=60000"`
}

// Defaults applies default values to unset fields.
func (f *Fallback) Defaults() {
	if f.Strategy == "" {
		f.Strategy = FallbackError
	}
	if f.Strategy == FallbackRetry {
		if f.MaxRetries == nil {
			f.MaxRetries = intPtr(3)
		}
		if f.RetryDelayMs == nil {
			f.RetryDelayMs = intPtr(1000)
		}
	}
}

func intPtr(v int) *int { return &v }
