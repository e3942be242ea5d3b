package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("PAGEWALK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PAGEWALK_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PAGEWALK_API_KEY is required")
		os.Exit(1)
	}

	// Paginated scrapes may walk up to 100 pages.
	api := newAPIClient(apiURL, apiKey, 10*time.Minute)

	s := server.NewMCPServer(
		"pagewalk",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	paginateTool := mcp.NewTool("paginate_scrape",
		mcp.WithDescription("Open a web page, extract fields with CSS selectors, then follow the 'next page' control and repeat. Returns one record per rule per page (or per item when item_selector is set), each tagged with _pageNumber."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The first page of the listing"),
		),
		mcp.WithString("pagination_selector",
			mcp.Required(),
			mcp.Description("CSS selector of the 'next page' control. Pagination stops when it is missing or has a disabled attribute."),
		),
		mcp.WithArray("data_selectors",
			mcp.Required(),
			mcp.Description(`Ordered extraction rules: objects with "field_name", "selector", "extraction_type" ("text", "html" or "attribute"), optional "attribute_name" and optional "item_selector".`),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Maximum number of pages to visit (default: 5, max: 100)"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("'browser' (default) renders each page; 'http' fetches raw HTML and follows the control's href"),
			mcp.Enum("browser", "http"),
		),
	)
	s.AddTool(paginateTool, handlePaginate(api))

	tableTool := mcp.NewTool("scrape_table",
		mcp.WithDescription("Extract an HTML table into rows keyed by column header."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page containing the table"),
		),
		mcp.WithString("table_selector",
			mcp.Required(),
			mcp.Description("CSS selector of the table element"),
		),
		mcp.WithString("headers_from",
			mcp.Description("Where column names come from: 'first_row' (default), 'custom_selectors' or 'generated'"),
			mcp.Enum("first_row", "custom_selectors", "generated"),
		),
	)
	s.AddTool(tableTool, handleTable(api))

	contentTool := mcp.NewTool("page_content",
		mcp.WithDescription("Render a web page and return its cleaned main content."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'markdown' (default), 'text' or 'html'"),
			mcp.Enum("markdown", "text", "html"),
		),
		mcp.WithString("extract_mode",
			mcp.Description("'readability' (default, main article only) or 'raw' (full page)"),
			mcp.Enum("readability", "raw"),
		),
	)
	s.AddTool(contentTool, handleContent(api))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
