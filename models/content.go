package models

// ContentRequest is the payload for POST /api/v1/content.
type ContentRequest struct {
	Target

	// OutputFormat is "markdown" (default), "html" or "text".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=markdown html text"`

	// ExtractMode is "readability" (default, main article only) or "raw".
	ExtractMode string `json:"extract_mode,omitempty" binding:"omitempty,oneof=readability raw"`

	// MaxAge allows serving a cached response younger than this many
	// milliseconds. 0 disables the cache.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	Options Options `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *ContentRequest) Defaults() {
	r.Target.Defaults()
	r.Options.Fallback.Defaults()
	if r.OutputFormat == "" {
		r.OutputFormat = "markdown"
	}
	if r.ExtractMode == "" {
		r.ExtractMode = "readability"
	}
}

// ContentResponse is the response for POST /api/v1/content.
type ContentResponse struct {
	Success    bool       `json:"success"`
	RequestID  string     `json:"request_id,omitempty"`
	StatusCode int        `json:"status_code"`
	FinalURL   string     `json:"final_url"`
	Content    string     `json:"content"`
	Metadata   Metadata   `json:"metadata"`
	Timing     TimingInfo `json:"timing"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	// FetchMethod records how the page was fetched: "http" or "browser".
	FetchMethod string `json:"fetch_method,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// Metadata holds page-level information extracted during scraping.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	Author      string `json:"author,omitempty"`
	Language    string `json:"language,omitempty"`
	SourceURL   string `json:"source_url"`
}
