package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minArticleText is the shortest readability text accepted as the page's
// main content. Listing pages often fall below it.
const minArticleText = 50

// extractArticle returns the part of rawHTML to render. In "raw" mode, or
// when readability cannot find an article, the whole page is used and the
// metadata is read from the document head.
func extractArticle(rawHTML, sourceURL, extractMode string) readability.Article {
	if extractMode == "raw" {
		return wholePage(rawHTML)
	}

	pageURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("readability skipped: invalid source URL", "url", sourceURL, "error", err)
		return wholePage(rawHTML)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	switch {
	case err != nil:
		slog.Debug("readability failed, using whole page", "url", sourceURL, "error", err)
		return wholePage(rawHTML)
	case len(strings.TrimSpace(article.TextContent)) < minArticleText:
		slog.Debug("readability found no article, using whole page",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return wholePage(rawHTML)
	}
	return article
}

// wholePage wraps the full document as an Article. Text excludes scripts
// and styles; title, description and language come from the head.
func wholePage(rawHTML string) readability.Article {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return readability.Article{Content: rawHTML, TextContent: rawHTML}
	}

	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	siteName, _ := doc.Find(`meta[property="og:site_name"]`).First().Attr("content")
	lang, _ := doc.Find("html").First().Attr("lang")
	title := strings.TrimSpace(doc.Find("head title").First().Text())

	doc.Find("script, style, noscript, template").Remove()

	return readability.Article{
		Title:       title,
		Excerpt:     strings.TrimSpace(description),
		SiteName:    strings.TrimSpace(siteName),
		Language:    strings.TrimSpace(lang),
		Content:     rawHTML,
		TextContent: doc.Text(),
	}
}
