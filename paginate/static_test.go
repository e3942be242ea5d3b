package paginate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagewalk/engine"
	"github.com/use-agent/pagewalk/models"
)

const listingPage = `<html><body>
<ul>
  <li class="row"><span class="name">%s-1</span><a href="/item/%[1]s-1">more</a></li>
  <li class="row"><span class="name">%[1]s-2</span></li>
</ul>
%s
</body></html>`

func newListingServer(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/list":        fmt.Sprintf(listingPage, "p1", `<a class="next" href="list?page=2">Next</a>`),
		"/list?page=2": fmt.Sprintf(listingPage, "p2", `<a class="next" href="/list?page=3">Next</a>`),
		"/list?page=3": fmt.Sprintf(listingPage, "p3", `<a class="next" disabled href="/list?page=4">Next</a>`),
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
}

func fetchStatic(t *testing.T, srv *httptest.Server, path string) *StaticDocument {
	t.Helper()
	eng := engine.NewHTTPEngine("")
	res, err := eng.Fetch(context.Background(), &engine.FetchRequest{URL: srv.URL + path})
	require.NoError(t, err)
	doc, err := NewStaticDocument(res.HTML, res.FinalURL, eng, engine.FetchRequest{})
	require.NoError(t, err)
	return doc
}

func TestStaticDocument_WalksListing(t *testing.T) {
	srv := newListingServer(t)
	defer srv.Close()

	doc := fetchStatic(t, srv, "/list")
	rules := []models.ExtractionRule{
		{FieldName: "name", Selector: ".name", ExtractionType: models.ExtractText, ItemSelector: ".row"},
		{FieldName: "link", Selector: "a", ExtractionType: models.ExtractAttribute, AttributeName: "href", ItemSelector: ".row"},
	}

	res, err := (&Extractor{NavigationTimeout: 5 * time.Second}).Run(context.Background(), doc, rules, "a.next", 10)
	require.NoError(t, err)

	// Page 3's control is disabled.
	assert.Equal(t, 3, res.PagesVisited)
	assert.Equal(t, 12, res.TotalRecords)
	assert.Equal(t, "p1-1", res.Records[0].Fields["name"])
	assert.Equal(t, "/item/p1-1", res.Records[2].Fields["link"])
	assert.Nil(t, res.Records[3].Fields["link"])
	assert.Equal(t, "p3-2", res.Records[9].Fields["name"])
	assert.Equal(t, 3, res.Records[9].Page)
	assert.Equal(t, srv.URL+"/list?page=3", doc.URL())
}

func TestStaticDocument_ClickFailures(t *testing.T) {
	srv := newListingServer(t)
	defer srv.Close()

	t.Run("missing control", func(t *testing.T) {
		doc := fetchStatic(t, srv, "/list")
		err := doc.ClickAndWait(context.Background(), ".nope", time.Second)
		assert.Error(t, err)
	})

	t.Run("control without href", func(t *testing.T) {
		doc := fetchStatic(t, srv, "/list")
		err := doc.ClickAndWait(context.Background(), ".name", time.Second)
		assert.Error(t, err)
	})

	t.Run("fetch failure keeps current page", func(t *testing.T) {
		doc := fetchStatic(t, srv, "/list?page=3")
		err := doc.ClickAndWait(context.Background(), "a.next", time.Second)
		assert.Error(t, err)
		assert.Equal(t, srv.URL+"/list?page=3", doc.URL())
	})
}

func TestStaticElement_Values(t *testing.T) {
	doc, err := NewStaticDocument(`<div id="x" data-k="v"> <b>bold</b> text </div>`, "http://example.com/", nil, engine.FetchRequest{})
	require.NoError(t, err)

	els, err := doc.QueryAll(context.Background(), "#x")
	require.NoError(t, err)
	require.Len(t, els, 1)

	text, err := els[0].Text()
	require.NoError(t, err)
	assert.Equal(t, " bold text ", text)

	html, err := els[0].HTML()
	require.NoError(t, err)
	assert.Equal(t, " <b>bold</b> text ", html)

	v, ok, err := els[0].Attribute("data-k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok, _ = els[0].Attribute("missing")
	assert.False(t, ok)

	child, err := els[0].Find("i")
	require.NoError(t, err)
	assert.Nil(t, child)
}

func TestValidateSelectors(t *testing.T) {
	ok := []models.ExtractionRule{{FieldName: "a", Selector: "div > p", ItemSelector: "li.row"}}
	assert.NoError(t, ValidateSelectors(ok, "a.next"))

	err := ValidateSelectors(ok, "a[")
	require.Error(t, err)
	assert.True(t, models.IsInvalidInput(err))

	bad := []models.ExtractionRule{{FieldName: "a", Selector: "p", ItemSelector: "li(("}}
	assert.Error(t, ValidateSelectors(bad, ".next"))
}

func TestCheckSelectors_NamesRejectedField(t *testing.T) {
	rules := []models.ExtractionRule{
		{FieldName: "title", Selector: "h2"},
		{FieldName: "price", Selector: "span:bogus", ItemSelector: ".row"},
	}
	var seen []string
	parse := func(selector string) error {
		seen = append(seen, selector)
		if strings.Contains(selector, ":bogus") {
			return errors.New("unknown pseudo-class")
		}
		return nil
	}

	err := CheckSelectors(rules, "a.next", parse)
	require.Error(t, err)
	assert.True(t, models.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "price.selector")
	assert.Equal(t, []string{"a.next", "h2", "span:bogus"}, seen)
}
