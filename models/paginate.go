package models

import (
	"encoding/json"
	"maps"
)

// ExtractionType says which part of a matched element becomes the value.
type ExtractionType string

const (
	ExtractText      ExtractionType = "text"
	ExtractHTML      ExtractionType = "html"
	ExtractAttribute ExtractionType = "attribute"
)

// PageNumberField is the key under which a record's page number is emitted.
const PageNumberField = "_pageNumber"

// ExtractionRule describes one field pulled from every page.
type ExtractionRule struct {
	FieldName      string         `json:"field_name"`
	Selector       string         `json:"selector"`
	ExtractionType ExtractionType `json:"extraction_type"`

	// AttributeName is required when ExtractionType is "attribute".
	AttributeName string `json:"attribute_name,omitempty"`

	// ItemSelector scopes the rule to each matching element: one record
	// per item instead of one record per page.
	ItemSelector string `json:"item_selector,omitempty"`
}

// Validate rejects rules the extractor cannot evaluate.
func (r ExtractionRule) Validate() error {
	if r.FieldName == "" {
		return NewInvalidInput("extraction rule: field_name is required")
	}
	if r.FieldName == PageNumberField {
		return NewInvalidInput("extraction rule: field_name %q is reserved", PageNumberField)
	}
	if r.Selector == "" {
		return NewInvalidInput("extraction rule %q: selector is required", r.FieldName)
	}
	switch r.ExtractionType {
	case ExtractText, ExtractHTML:
	case ExtractAttribute:
		if r.AttributeName == "" {
			return NewInvalidInput("extraction rule %q: attribute_name is required for attribute extraction", r.FieldName)
		}
	default:
		return NewInvalidInput("extraction rule %q: unknown extraction_type %q", r.FieldName, r.ExtractionType)
	}
	return nil
}

// PageRecord is one extracted record. Field values are nil, a string, or an
// []any of per-match values for document-scoped rules with at least one match.
type PageRecord struct {
	Page   int
	Fields map[string]any
}

// MarshalJSON flattens the record into {"_pageNumber": n, "<field>": value}.
func (r PageRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	maps.Copy(out, r.Fields)
	out[PageNumberField] = r.Page
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON; used by API clients such as
// the MCP bridge.
func (r *PageRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Fields = make(map[string]any, len(raw))
	for k, v := range raw {
		if k == PageNumberField {
			if n, ok := v.(float64); ok {
				r.Page = int(n)
			}
			continue
		}
		r.Fields[k] = v
	}
	return nil
}

// PaginateRequest is the payload for POST /api/v1/paginate.
type PaginateRequest struct {
	Target

	// PaginationSelector identifies the "next page" control. Required.
	PaginationSelector string `json:"pagination_selector" binding:"required"`

	// MaxPages is the page limit. Default: 5. Max: 100.
	MaxPages int `json:"max_pages,omitempty" binding:"omitempty,min=1,max=100"`

	// DataSelectors are the ordered extraction rules.
	DataSelectors []ExtractionRule `json:"data_selectors" binding:"required,min=1"`

	// NavigationTimeoutMs bounds each click-and-wait step. 0 uses the
	// server default.
	NavigationTimeoutMs int `json:"navigation_timeout_ms,omitempty" binding:"omitempty,min=100,max=120000"`

	Options Options `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *PaginateRequest) Defaults() {
	r.Target.Defaults()
	r.Options.Fallback.Defaults()
	if r.MaxPages == 0 {
		r.MaxPages = 5
	}
}

// PaginateResponse is the response for POST /api/v1/paginate.
type PaginateResponse struct {
	Success    bool         `json:"success"`
	RequestID  string       `json:"request_id,omitempty"`
	Data       []PageRecord `json:"data"`
	PageCount  int          `json:"pageCount"`
	TotalItems int          `json:"totalItems"`
	Timing     TimingInfo   `json:"timing"`
	Error      *ErrorDetail `json:"error,omitempty"`
}
