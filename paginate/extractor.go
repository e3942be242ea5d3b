package paginate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/pagewalk/models"
)

// DefaultNavigationTimeout bounds a click-and-wait step when the Extractor
// has no explicit timeout.
const DefaultNavigationTimeout = 30 * time.Second

// disabledAttr marks a pagination control that must not be followed.
const disabledAttr = "disabled"

// Extractor runs paginated extractions. The zero value is ready to use.
type Extractor struct {
	// NavigationTimeout bounds each click-and-wait step.
	NavigationTimeout time.Duration
}

// Validate rejects a configuration before any page is touched.
func Validate(rules []models.ExtractionRule, controlSelector string, pageLimit int) error {
	if controlSelector == "" {
		return models.NewInvalidInput("pagination selector is required")
	}
	if pageLimit < 1 {
		return models.NewInvalidInput("max pages must be at least 1, got %d", pageLimit)
	}
	if len(rules) == 0 {
		return models.NewInvalidInput("at least one extraction rule is required")
	}
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.FieldName]; dup {
			return models.NewInvalidInput("extraction rule %q: duplicate field_name", r.FieldName)
		}
		seen[r.FieldName] = struct{}{}
	}
	return nil
}

// Run extracts records from doc page by page.
//
// Extraction misses become null fields and a failed click-and-wait ends the
// walk early with the records gathered so far; neither is an error. The only
// error returned is a configuration error, raised before the first page.
func (e *Extractor) Run(ctx context.Context, doc Document, rules []models.ExtractionRule, controlSelector string, pageLimit int) (*Result, error) {
	if err := Validate(rules, controlSelector, pageLimit); err != nil {
		return nil, err
	}

	s := newSession(rules, controlSelector, pageLimit)
	for s.currentPage <= s.pageLimit {
		slog.Debug("scraping page", "page", s.currentPage, "maxPages", s.pageLimit)

		var pageRecords []models.PageRecord
		for _, rule := range s.rules {
			pageRecords = append(pageRecords, extractRule(ctx, doc, rule, s.currentPage)...)
		}
		s.records = append(s.records, pageRecords...)

		if !hasNextPage(ctx, doc, s.controlSelector) || s.currentPage == s.pageLimit {
			break
		}

		if err := doc.ClickAndWait(ctx, s.controlSelector, e.navigationTimeout()); err != nil {
			slog.Warn("pagination stopped: navigation failed",
				"page", s.currentPage,
				"selector", s.controlSelector,
				"error", err,
			)
			break
		}
		s.currentPage++
	}

	return s.result(), nil
}

func (e *Extractor) navigationTimeout() time.Duration {
	if e.NavigationTimeout > 0 {
		return e.NavigationTimeout
	}
	return DefaultNavigationTimeout
}

// hasNextPage reports whether the control exists and is not disabled.
func hasNextPage(ctx context.Context, doc Document, selector string) bool {
	controls, err := doc.QueryAll(ctx, selector)
	if err != nil {
		slog.Debug("pagination control lookup failed", "selector", selector, "error", err)
		return false
	}
	if len(controls) == 0 {
		return false
	}
	_, disabled, err := controls[0].Attribute(disabledAttr)
	if err != nil {
		slog.Debug("pagination control attribute read failed", "selector", selector, "error", err)
		return false
	}
	return !disabled
}

// extractRule produces the records one rule contributes to one page.
func extractRule(ctx context.Context, doc Document, rule models.ExtractionRule, page int) []models.PageRecord {
	if rule.ItemSelector != "" {
		return extractItems(ctx, doc, rule, page)
	}

	rec := models.PageRecord{Page: page, Fields: map[string]any{rule.FieldName: nil}}

	elements, err := doc.QueryAll(ctx, rule.Selector)
	if err != nil {
		slog.Debug("selector lookup failed", "field", rule.FieldName, "selector", rule.Selector, "error", err)
		return []models.PageRecord{rec}
	}
	if len(elements) == 0 {
		return []models.PageRecord{rec}
	}

	values := make([]any, 0, len(elements))
	for _, el := range elements {
		values = append(values, extractValue(el, rule))
	}
	rec.Fields[rule.FieldName] = values
	return []models.PageRecord{rec}
}

// extractItems emits one record per element matching the rule's item selector.
func extractItems(ctx context.Context, doc Document, rule models.ExtractionRule, page int) []models.PageRecord {
	items, err := doc.QueryAll(ctx, rule.ItemSelector)
	if err != nil {
		slog.Debug("item selector lookup failed", "field", rule.FieldName, "selector", rule.ItemSelector, "error", err)
		return nil
	}

	records := make([]models.PageRecord, 0, len(items))
	for _, item := range items {
		var value any
		child, err := item.Find(rule.Selector)
		switch {
		case err != nil:
			slog.Debug("item child lookup failed", "field", rule.FieldName, "selector", rule.Selector, "error", err)
		case child != nil:
			value = extractValue(child, rule)
		}
		records = append(records, models.PageRecord{
			Page:   page,
			Fields: map[string]any{rule.FieldName: value},
		})
	}
	return records
}

// extractValue reads one element per the rule's extraction type. A read
// failure or a missing attribute yields nil.
func extractValue(el Element, rule models.ExtractionRule) any {
	switch rule.ExtractionType {
	case models.ExtractText:
		text, err := el.Text()
		if err != nil {
			return nil
		}
		return strings.TrimSpace(text)
	case models.ExtractHTML:
		html, err := el.HTML()
		if err != nil {
			return nil
		}
		return html
	case models.ExtractAttribute:
		v, ok, err := el.Attribute(rule.AttributeName)
		if err != nil || !ok {
			return nil
		}
		return v
	}
	return nil
}
