package paginate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/pagewalk/engine"
	"github.com/use-agent/pagewalk/models"
)

// StaticDocument is a Document over fetched, unrendered HTML. Clicking the
// pagination control follows its href through an engine.Engine and replaces
// the current snapshot with the fetched page.
type StaticDocument struct {
	eng     engine.Engine
	request engine.FetchRequest
	pageURL *url.URL
	doc     *goquery.Document
}

// NewStaticDocument parses rawHTML as the page found at pageURL. req is the
// template for every follow-up fetch; its URL field is replaced per fetch.
func NewStaticDocument(rawHTML, pageURL string, eng engine.Engine, req engine.FetchRequest) (*StaticDocument, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("static document: parse url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("static document: parse html: %w", err)
	}
	return &StaticDocument{eng: eng, request: req, pageURL: u, doc: doc}, nil
}

// URL returns the address of the current snapshot.
func (d *StaticDocument) URL() string { return d.pageURL.String() }

func (d *StaticDocument) QueryAll(_ context.Context, selector string) ([]Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return wrapSelection(d.doc.FindMatcher(sel)), nil
}

func (d *StaticDocument) ClickAndWait(ctx context.Context, selector string, timeout time.Duration) error {
	control := d.doc.Find(selector).First()
	if control.Length() == 0 {
		return fmt.Errorf("control %q not found", selector)
	}
	href, ok := control.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return fmt.Errorf("control %q has no followable href", selector)
	}
	next, err := d.pageURL.Parse(href)
	if err != nil {
		return fmt.Errorf("control %q: resolve href %q: %w", selector, href, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := d.request.WithURL(next.String())
	res, err := d.eng.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", req.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		return fmt.Errorf("parse %s: %w", req.URL, err)
	}
	finalURL, err := url.Parse(res.FinalURL)
	if err != nil || res.FinalURL == "" {
		finalURL = next
	}
	d.doc = doc
	d.pageURL = finalURL
	return nil
}

// ValidateSelectors checks every selector a paginated run will use against
// the CSS grammar understood by StaticDocument.
func ValidateSelectors(rules []models.ExtractionRule, controlSelector string) error {
	return CheckSelectors(rules, controlSelector, func(selector string) error {
		_, err := cascadia.Compile(selector)
		return err
	})
}

// CheckSelectors passes every non-empty selector of a run to parse and turns
// the first failure into a configuration error naming the field.
func CheckSelectors(rules []models.ExtractionRule, controlSelector string, parse func(string) error) error {
	check := func(field, selector string) error {
		if selector == "" {
			return nil
		}
		if err := parse(selector); err != nil {
			return models.NewInvalidInput("%s: invalid selector %q: %v", field, selector, err)
		}
		return nil
	}
	if err := check("pagination_selector", controlSelector); err != nil {
		return err
	}
	for _, r := range rules {
		if err := check(r.FieldName+".selector", r.Selector); err != nil {
			return err
		}
		if err := check(r.FieldName+".item_selector", r.ItemSelector); err != nil {
			return err
		}
	}
	return nil
}

// staticElement is a single-node goquery selection.
type staticElement struct {
	sel *goquery.Selection
}

func wrapSelection(s *goquery.Selection) []Element {
	out := make([]Element, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) {
		out = append(out, staticElement{sel: el})
	})
	return out
}

func (e staticElement) Find(selector string) (Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	child := e.sel.FindMatcher(sel).First()
	if child.Length() == 0 {
		return nil, nil
	}
	return staticElement{sel: child}, nil
}

func (e staticElement) Text() (string, error) { return e.sel.Text(), nil }

func (e staticElement) HTML() (string, error) { return e.sel.Html() }

func (e staticElement) Attribute(name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}
