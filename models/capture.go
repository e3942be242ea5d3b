package models

// BinaryData is a file attachment carried inside a JSON response.
type BinaryData struct {
	Data          string `json:"data"` // base64
	MimeType      string `json:"mimeType"`
	FileName      string `json:"fileName"`
	FileSize      int    `json:"fileSize"`
	FileExtension string `json:"fileExtension"`
	Hash          string `json:"hash"` // md5 hex
}

// ScreenshotRequest is the payload for POST /api/v1/screenshot.
type ScreenshotRequest struct {
	Target

	// FullPage captures the whole scrollable page. Default: true.
	FullPage *bool `json:"full_page,omitempty"`

	// Format is "png" (default), "jpeg" or "webp".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=png jpeg webp"`

	// Quality applies to jpeg and webp. Default: 80.
	Quality int `json:"quality,omitempty" binding:"omitempty,min=1,max=100"`

	// ElementSelector captures a single element when FullPage is false.
	ElementSelector string `json:"element_selector,omitempty"`

	Options Options `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *ScreenshotRequest) Defaults() {
	r.Target.Defaults()
	r.Options.Fallback.Defaults()
	if r.FullPage == nil {
		v := true
		r.FullPage = &v
	}
	if r.Format == "" {
		r.Format = "png"
	}
	if r.Quality == 0 {
		r.Quality = 80
	}
}

// PDFRequest is the payload for POST /api/v1/pdf.
type PDFRequest struct {
	Target

	PDF PDFOptions `json:"pdf_options"`

	Options Options `json:"options"`
}

// PDFOptions mirrors the print options of the browser.
type PDFOptions struct {
	Format              string  `json:"format,omitempty" binding:"omitempty,oneof=A3 A4 A5 Letter Legal Tabloid"`
	Landscape           bool    `json:"landscape"`
	PrintBackground     *bool   `json:"print_background,omitempty"`
	DisplayHeaderFooter bool    `json:"display_header_footer"`
	HeaderTemplate      string  `json:"header_template,omitempty"`
	FooterTemplate      string  `json:"footer_template,omitempty"`
	Scale               float64 `json:"scale,omitempty" binding:"omitempty,min=0.1,max=2"`
}

// Defaults applies default values to unset fields.
func (r *PDFRequest) Defaults() {
	r.Target.Defaults()
	r.Options.Fallback.Defaults()
	if r.PDF.Format == "" {
		r.PDF.Format = "A4"
	}
	if r.PDF.PrintBackground == nil {
		v := true
		r.PDF.PrintBackground = &v
	}
	if r.PDF.Scale == 0 {
		r.PDF.Scale = 1
	}
	if !r.PDF.DisplayHeaderFooter {
		r.PDF.HeaderTemplate = ""
		r.PDF.FooterTemplate = ""
	}
}

// CaptureResponse is the response for the screenshot and pdf endpoints.
type CaptureResponse struct {
	Success   bool                  `json:"success"`
	RequestID string                `json:"request_id,omitempty"`
	Binary    map[string]BinaryData `json:"binary,omitempty"`

	// Exactly one of the following describes what was captured.
	FullPage      *bool       `json:"fullPage,omitempty"`
	TargetElement string      `json:"targetElement,omitempty"`
	PDFOptions    *PDFOptions `json:"options,omitempty"`

	Timing TimingInfo   `json:"timing"`
	Error  *ErrorDetail `json:"error,omitempty"`
}
