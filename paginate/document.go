// Package paginate walks a multi-page listing, extracting records from every
// page and following a "next page" control until the listing is exhausted,
// the page limit is reached or navigation fails.
package paginate

import (
	"context"
	"time"
)

// Document is a stateful handle to a rendered page. The extractor only ever
// uses it from one goroutine.
type Document interface {
	// QueryAll returns every element matching selector in document order.
	// No match is an empty slice, not an error.
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// ClickAndWait activates the first element matching selector and blocks
	// until the resulting navigation has settled, or fails once timeout
	// elapses.
	ClickAndWait(ctx context.Context, selector string, timeout time.Duration) error
}

// Element is a reference to one element of a Document.
type Element interface {
	// Find returns the first descendant matching selector, or nil.
	Find(selector string) (Element, error)

	// Text returns the element's text content.
	Text() (string, error)

	// HTML returns the element's inner HTML.
	HTML() (string, error)

	// Attribute returns the named attribute and whether it is present.
	Attribute(name string) (string, bool, error)
}
