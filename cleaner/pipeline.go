package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/use-agent/pagewalk/models"
)

// Cleaner turns rendered HTML into readable content:
//
//	Stage 1 (extract): readability main content, or the whole page in raw mode
//	Stage 2 (format):  Markdown, HTML pass-through, or plain text
//
// The converter is created once and reused across all requests (goroutine-safe).
type Cleaner struct {
	md *converter.Converter
}

// NewCleaner initialises the Cleaner. Markdown keeps tables, since scraped
// listings are often tabular, and resolves relative links against the page.
func NewCleaner() *Cleaner {
	return &Cleaner{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Result is the cleaned content plus the metadata found while extracting.
type Result struct {
	Content  string
	Metadata models.Metadata
}

// Clean runs both stages. format is "markdown", "html" or "text";
// extractMode is "readability" or "raw".
func (c *Cleaner) Clean(rawHTML, sourceURL, format, extractMode string) (*Result, error) {
	article := extractArticle(rawHTML, sourceURL, extractMode)

	var content string
	switch format {
	case "html":
		content = article.Content
	case "text":
		content = strings.TrimSpace(article.TextContent)
	default:
		md, err := c.md.ConvertString(article.Content, converter.WithDomain(sourceURL))
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeExtraction, "markdown conversion failed", err)
		}
		content = md
	}

	return &Result{
		Content: content,
		Metadata: models.Metadata{
			Title:       article.Title,
			Description: article.Excerpt,
			SiteName:    article.SiteName,
			Author:      article.Byline,
			Language:    article.Language,
			SourceURL:   sourceURL,
		},
	}, nil
}
