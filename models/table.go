package models

// Header sources for table scraping.
const (
	HeadersFromFirstRow        = "first_row"
	HeadersFromCustomSelectors = "custom_selectors"
	HeadersFromManual          = "manual"
	HeadersFromGenerated       = "generated"
)

// TableRequest is the payload for POST /api/v1/table.
type TableRequest struct {
	Target

	// TableSelector locates the table. Required.
	TableSelector string `json:"table_selector" binding:"required"`

	// HeadersFrom decides where column names come from. Default: "first_row".
	HeadersFrom string `json:"headers_from,omitempty" binding:"omitempty,oneof=first_row custom_selectors manual generated"`

	// RowSelector selects data rows within the table. Default: "tbody tr".
	RowSelector string `json:"row_selector,omitempty"`

	// CellSelector selects cells within a row. Default: "td".
	CellSelector string `json:"cell_selector,omitempty"`

	// HeaderSelectors is used with "custom_selectors". Default: "th, thead td".
	HeaderSelectors string `json:"header_selectors,omitempty"`

	// ManualHeaders is used with "manual".
	ManualHeaders []string `json:"manual_headers,omitempty"`

	Options Options `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *TableRequest) Defaults() {
	r.Target.Defaults()
	r.Options.Fallback.Defaults()
	if r.HeadersFrom == "" {
		r.HeadersFrom = HeadersFromFirstRow
	}
	if r.RowSelector == "" {
		r.RowSelector = "tbody tr"
	}
	if r.CellSelector == "" {
		r.CellSelector = "td"
	}
	if r.HeaderSelectors == "" {
		r.HeaderSelectors = "th, thead td"
	}
}

// TableResponse is the response for POST /api/v1/table.
type TableResponse struct {
	Success   bool                `json:"success"`
	RequestID string              `json:"request_id,omitempty"`
	Data      []map[string]string `json:"data"`
	Headers   []string            `json:"headers"`
	RowCount  int                 `json:"rowCount"`
	Timing    TimingInfo          `json:"timing"`
	Error     *ErrorDetail        `json:"error,omitempty"`
}
