package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head><title>Doc</title><script>var x = 1;</script></head>
<body><h1>Heading</h1><p>Some <a href="/rel">linked</a> text.</p></body></html>`

func TestClean_RawText(t *testing.T) {
	res, err := NewCleaner().Clean(articleHTML, "https://example.com/a", "text", "raw")
	require.NoError(t, err)

	assert.Contains(t, res.Content, "Heading")
	assert.Contains(t, res.Content, "Some linked text.")
	assert.NotContains(t, res.Content, "var x")
	assert.Equal(t, "https://example.com/a", res.Metadata.SourceURL)
}

func TestClean_RawHTML(t *testing.T) {
	res, err := NewCleaner().Clean(articleHTML, "https://example.com/a", "html", "raw")
	require.NoError(t, err)
	assert.Equal(t, articleHTML, res.Content)
}

func TestClean_RawMarkdownResolvesLinks(t *testing.T) {
	res, err := NewCleaner().Clean(articleHTML, "https://example.com/a", "markdown", "raw")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Content, "# Heading"), res.Content)
	assert.Contains(t, res.Content, "[linked](https://example.com/rel)")
	assert.NotContains(t, res.Content, "var x")
}

func TestClean_RawMetadataFromHead(t *testing.T) {
	page := `<html lang="de"><head><title> Katalog </title>
<meta name="description" content="Alle Produkte">
<meta property="og:site_name" content="Shop"></head>
<body><ul><li>Eins</li></ul></body></html>`

	res, err := NewCleaner().Clean(page, "https://shop.example/list", "text", "raw")
	require.NoError(t, err)
	assert.Equal(t, "Katalog", res.Metadata.Title)
	assert.Equal(t, "Alle Produkte", res.Metadata.Description)
	assert.Equal(t, "Shop", res.Metadata.SiteName)
	assert.Equal(t, "de", res.Metadata.Language)
}

func TestClean_ShortPageFallsBackToWholePage(t *testing.T) {
	page := `<html><head><title>Tiny</title></head><body><p>Hi</p></body></html>`

	res, err := NewCleaner().Clean(page, "https://example.com/", "html", "readability")
	require.NoError(t, err)
	assert.Equal(t, page, res.Content)
	assert.Equal(t, "Tiny", res.Metadata.Title)
}
