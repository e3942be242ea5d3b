package scraper

import (
	"encoding/json"

	"github.com/use-agent/pagewalk/cleaner"
	"github.com/use-agent/pagewalk/paginate"
)

// Timing records how long an operation spent in each phase.
type Timing struct {
	NavigationMs int64
	OperationMs  int64
}

// PaginateResult is returned by DoPaginate.
type PaginateResult struct {
	*paginate.Result

	// FetchMethod records how pages were fetched: "http" or "browser".
	FetchMethod string
	Timing      Timing
}

// TableResult is returned by DoTable.
type TableResult struct {
	*cleaner.Table
	Timing Timing
}

// CaptureResult is returned by DoScreenshot and DoPDF.
type CaptureResult struct {
	Data     []byte
	MimeType string

	// ElementError is set instead of Data when the requested element could
	// not be captured.
	ElementError string

	Timing Timing
}

// ScriptResult is returned by DoScript.
type ScriptResult struct {
	// Value is the JSON encoding of the script's return value.
	Value json.RawMessage

	// ScriptError is set when the script threw.
	ScriptError string

	Timing Timing
}

// PageResult is the loaded page returned by DoContent.
type PageResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string

	// FetchMethod records how the page was fetched: "http" or "browser".
	FetchMethod string
	Timing      Timing
}
