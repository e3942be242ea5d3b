package paginate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagewalk/models"
)

// fakeElement is an in-memory Element.
type fakeElement struct {
	text     string
	html     string
	attrs    map[string]string
	children map[string][]*fakeElement
}

func (e *fakeElement) Find(selector string) (Element, error) {
	if kids := e.children[selector]; len(kids) > 0 {
		return kids[0], nil
	}
	return nil, nil
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }
func (e *fakeElement) HTML() (string, error) { return e.html, nil }

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

// fakePage maps selectors to the elements they match.
type fakePage map[string][]*fakeElement

// fakeDocument steps through pages on every successful click.
type fakeDocument struct {
	pages   []fakePage
	current int

	// failClickOn is the 1-based page whose click fails; 0 never fails.
	failClickOn int
	clicks      int
	timeouts    []time.Duration
}

func (d *fakeDocument) QueryAll(_ context.Context, selector string) ([]Element, error) {
	var out []Element
	for _, el := range d.pages[d.current][selector] {
		out = append(out, el)
	}
	return out, nil
}

func (d *fakeDocument) ClickAndWait(_ context.Context, _ string, timeout time.Duration) error {
	d.clicks++
	d.timeouts = append(d.timeouts, timeout)
	if d.failClickOn == d.current+1 {
		return errors.New("navigation timeout")
	}
	if d.current+1 >= len(d.pages) {
		return errors.New("no such page")
	}
	d.current++
	return nil
}

func textEl(s string) *fakeElement { return &fakeElement{text: s} }

func nextButton() []*fakeElement { return []*fakeElement{{attrs: map[string]string{}}} }

func textRule(field, selector string) models.ExtractionRule {
	return models.ExtractionRule{FieldName: field, Selector: selector, ExtractionType: models.ExtractText}
}

func TestRun_ThreePagesOneValueEach(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		{"h1": {textEl("A")}, ".next": nextButton()},
		{"h1": {textEl("B")}, ".next": nextButton()},
		{"h1": {textEl("C")}, ".next": nextButton()},
	}}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("field", "h1")}, ".next", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, res.PagesVisited)
	assert.Equal(t, 3, res.TotalRecords)
	require.Len(t, res.Records, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, i+1, res.Records[i].Page)
		assert.Equal(t, []any{want}, res.Records[i].Fields["field"])
	}
	// The last page never clicks.
	assert.Equal(t, 2, doc.clicks)
}

func TestRun_ControlNeverMatches(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{"h1": {textEl("only")}}}}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("title", "h1")}, ".next", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, res.PagesVisited)
	assert.Equal(t, 0, doc.clicks)
}

func TestRun_ControlDisappearsAfterPageTwo(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		{"h1": {textEl("1")}, ".next": nextButton()},
		{"h1": {textEl("2")}},
		{"h1": {textEl("3")}, ".next": nextButton()},
	}}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("title", "h1")}, ".next", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, res.PagesVisited)
	assert.Equal(t, 2, res.TotalRecords)
	// Stopped on the "no more control" path, not by a failed click.
	assert.Equal(t, 1, doc.clicks)
}

func TestRun_DisabledControlStops(t *testing.T) {
	disabled := []*fakeElement{{attrs: map[string]string{"disabled": ""}}}
	doc := &fakeDocument{pages: []fakePage{
		{"h1": {textEl("1")}, ".next": disabled},
		{"h1": {textEl("2")}},
	}}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("title", "h1")}, ".next", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, res.PagesVisited)
	assert.Equal(t, 0, doc.clicks)
}

func TestRun_NavigationFailureKeepsPartialResults(t *testing.T) {
	doc := &fakeDocument{
		failClickOn: 2,
		pages: []fakePage{
			{"h1": {textEl("1")}, ".next": nextButton()},
			{"h1": {textEl("2")}, ".next": nextButton()},
			{"h1": {textEl("3")}, ".next": nextButton()},
		},
	}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("title", "h1")}, ".next", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, res.PagesVisited)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Records[0].Page)
	assert.Equal(t, 2, res.Records[1].Page)
}

func TestRun_PagesVisitedNeverExceedsLimit(t *testing.T) {
	for limit := 1; limit <= 4; limit++ {
		pages := make([]fakePage, 6)
		for i := range pages {
			pages[i] = fakePage{"h1": {textEl("x")}, ".next": nextButton()}
		}
		doc := &fakeDocument{pages: pages}

		var ex Extractor
		res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("title", "h1")}, ".next", limit)
		require.NoError(t, err)
		assert.Equal(t, limit, res.PagesVisited, "limit %d", limit)
		assert.LessOrEqual(t, res.PagesVisited, limit)
	}
}

func TestRun_DocumentRuleWithoutMatchesYieldsOneNullRecord(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{}}}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{textRule("price", ".price")}, ".next", 1)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	v, present := res.Records[0].Fields["price"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestRun_ItemRuleWithoutItemsYieldsNoRecords(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{}}}
	rule := textRule("name", ".name")
	rule.ItemSelector = ".row"

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{rule}, ".next", 1)
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	assert.Equal(t, 0, res.TotalRecords)
	assert.Equal(t, 1, res.PagesVisited)
}

func TestRun_ItemRules(t *testing.T) {
	rows := []*fakeElement{
		{children: map[string][]*fakeElement{
			".name": {{text: "  Widget  ", html: "<b>Widget</b>"}},
			"a":     {{attrs: map[string]string{"href": "/w"}}},
		}},
		{children: map[string][]*fakeElement{
			"a": {{attrs: map[string]string{}}},
		}},
	}
	doc := &fakeDocument{pages: []fakePage{{".row": rows}}}

	rules := []models.ExtractionRule{
		{FieldName: "name", Selector: ".name", ExtractionType: models.ExtractText, ItemSelector: ".row"},
		{FieldName: "markup", Selector: ".name", ExtractionType: models.ExtractHTML, ItemSelector: ".row"},
		{FieldName: "link", Selector: "a", ExtractionType: models.ExtractAttribute, AttributeName: "href", ItemSelector: ".row"},
	}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, rules, ".next", 1)
	require.NoError(t, err)

	// Rules sharing an item selector are not merged: 3 rules x 2 items.
	require.Len(t, res.Records, 6)
	assert.Equal(t, "Widget", res.Records[0].Fields["name"])
	assert.Nil(t, res.Records[1].Fields["name"])
	assert.Equal(t, "<b>Widget</b>", res.Records[2].Fields["markup"])
	assert.Nil(t, res.Records[3].Fields["markup"])
	assert.Equal(t, "/w", res.Records[4].Fields["link"])
	assert.Nil(t, res.Records[5].Fields["link"], "missing attribute is null")
	for _, r := range res.Records {
		assert.Len(t, r.Fields, 1)
		assert.Equal(t, 1, r.Page)
	}
}

func TestRun_DocumentRuleCollectsAllMatches(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{
		"img": {
			{attrs: map[string]string{"src": "a.png"}},
			{attrs: map[string]string{}},
			{attrs: map[string]string{"src": "c.png"}},
		},
	}}}
	rule := models.ExtractionRule{FieldName: "images", Selector: "img", ExtractionType: models.ExtractAttribute, AttributeName: "src"}

	var ex Extractor
	res, err := ex.Run(context.Background(), doc, []models.ExtractionRule{rule}, ".next", 1)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, []any{"a.png", nil, "c.png"}, res.Records[0].Fields["images"])
}

func TestRun_NavigationTimeout(t *testing.T) {
	newDoc := func() *fakeDocument {
		return &fakeDocument{pages: []fakePage{
			{".next": nextButton()},
			{},
		}}
	}
	rules := []models.ExtractionRule{textRule("x", "h1")}

	doc := newDoc()
	_, err := (&Extractor{}).Run(context.Background(), doc, rules, ".next", 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{DefaultNavigationTimeout}, doc.timeouts)

	doc = newDoc()
	_, err = (&Extractor{NavigationTimeout: 2 * time.Second}).Run(context.Background(), doc, rules, ".next", 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, doc.timeouts)
}

func TestRun_ConfigurationErrorsBeforeAnyPage(t *testing.T) {
	tests := []struct {
		name    string
		rules   []models.ExtractionRule
		control string
		limit   int
	}{
		{
			name:    "attribute without name",
			rules:   []models.ExtractionRule{{FieldName: "link", Selector: "a", ExtractionType: models.ExtractAttribute}},
			control: ".next",
			limit:   3,
		},
		{
			name:    "zero page limit",
			rules:   []models.ExtractionRule{textRule("a", "h1")},
			control: ".next",
			limit:   0,
		},
		{
			name:    "missing control selector",
			rules:   []models.ExtractionRule{textRule("a", "h1")},
			control: "",
			limit:   1,
		},
		{
			name:    "duplicate field",
			rules:   []models.ExtractionRule{textRule("a", "h1"), textRule("a", "h2")},
			control: ".next",
			limit:   1,
		},
		{
			name:    "unknown type",
			rules:   []models.ExtractionRule{{FieldName: "a", Selector: "h1", ExtractionType: "json"}},
			control: ".next",
			limit:   1,
		},
		{
			name:    "no rules",
			control: ".next",
			limit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &panicDocument{}
			_, err := (&Extractor{}).Run(context.Background(), doc, tt.rules, tt.control, tt.limit)
			require.Error(t, err)
			assert.True(t, models.IsInvalidInput(err))
		})
	}
}

// panicDocument fails the test if the extractor touches it.
type panicDocument struct{}

func (panicDocument) QueryAll(context.Context, string) ([]Element, error) {
	panic("document queried before validation")
}

func (panicDocument) ClickAndWait(context.Context, string, time.Duration) error {
	panic("document clicked before validation")
}
