package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the API's error detail.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope holds the fields every API response shares.
type envelope struct {
	Success bool      `json:"success"`
	Error   *apiError `json:"error"`
}

type paginateResponse struct {
	envelope
	Data       []json.RawMessage `json:"data"`
	PageCount  int               `json:"pageCount"`
	TotalItems int               `json:"totalItems"`
}

type tableResponse struct {
	envelope
	Data     []map[string]string `json:"data"`
	Headers  []string            `json:"headers"`
	RowCount int                 `json:"rowCount"`
}

type contentResponse struct {
	envelope
	Content  string `json:"content"`
	Metadata *struct {
		Title     string `json:"title"`
		SourceURL string `json:"source_url"`
	} `json:"metadata"`
}

// apiClient posts tool calls to the pagewalk HTTP API.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newAPIClient(baseURL, apiKey string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// post sends payload to path and decodes the response into out. An
// unsuccessful response is returned as an error carrying the API's code.
func (a *apiClient) post(ctx context.Context, path string, payload any, out interface{ failure() error }) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", a.apiKey)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return out.failure()
}

func (e *envelope) failure() error {
	if e.Success {
		return nil
	}
	if e.Error != nil {
		return fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
	}
	return fmt.Errorf("request failed")
}

func handlePaginate(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		control, err := request.RequireString("pagination_selector")
		if err != nil {
			return mcp.NewToolResultError("pagination_selector is required"), nil
		}
		rules, ok := request.GetArguments()["data_selectors"].([]any)
		if !ok || len(rules) == 0 {
			return mcp.NewToolResultError("data_selectors is required and must be a non-empty array of rules"), nil
		}

		payload := map[string]any{
			"url":                 url,
			"pagination_selector": control,
			"data_selectors":      rules,
		}
		if n := request.GetInt("max_pages", 0); n > 0 {
			payload["max_pages"] = n
		}
		if mode := request.GetString("fetch_mode", ""); mode != "" {
			payload["fetch_mode"] = mode
		}

		var resp paginateResponse
		if err := api.post(ctx, "/api/v1/paginate", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Pages visited: %d\nRecords: %d\n\n", resp.PageCount, resp.TotalItems)
		for _, rec := range resp.Data {
			b.Write(rec)
			b.WriteByte('\n')
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleTable(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		selector, err := request.RequireString("table_selector")
		if err != nil {
			return mcp.NewToolResultError("table_selector is required"), nil
		}

		payload := map[string]any{
			"url":            url,
			"table_selector": selector,
		}
		if from := request.GetString("headers_from", ""); from != "" {
			payload["headers_from"] = from
		}

		var resp tableResponse
		if err := api.post(ctx, "/api/v1/table", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatTable(resp.Headers, resp.Data)), nil
	}
}

// formatTable renders rows as a Markdown table.
func formatTable(headers []string, rows []map[string]string) string {
	if len(headers) == 0 {
		return "(empty table)"
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = strings.ReplaceAll(row[h], "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func handleContent(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]any{
			"url":           url,
			"output_format": request.GetString("output_format", ""),
			"extract_mode":  request.GetString("extract_mode", ""),
		}

		var resp contentResponse
		if err := api.post(ctx, "/api/v1/content", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result string
		if m := resp.Metadata; m != nil {
			result = fmt.Sprintf("Title: %s\nSource: %s\n\n", m.Title, m.SourceURL)
		}
		return mcp.NewToolResultText(result + resp.Content), nil
	}
}
