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
	"github.com/use-agent/newsgrab/models"
)

// apiClient calls the newsgrab HTTP API.
type apiClient struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	pollInterval time.Duration
}

func newAPIClient(baseURL, apiKey string, pollInterval time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// A capture holds the browser for up to content wait + settle + image wait.
		http:         &http.Client{Timeout: 120 * time.Second},
		pollInterval: pollInterval,
	}
}

// do sends a request and decodes the JSON body into out whatever the status.
func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}

// waitBatch polls a batch job until it leaves "processing" or ctx ends.
func (c *apiClient) waitBatch(ctx context.Context, id string) (*models.BatchStatusResponse, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			var status models.BatchStatusResponse
			if err := c.do(ctx, http.MethodGet, "/api/v1/batch/"+id, nil, &status); err != nil {
				return nil, err
			}
			if status.ID == "" {
				return nil, fmt.Errorf("batch job %s not found", id)
			}
			if status.Status != "processing" {
				return &status, nil
			}
		}
	}
}

// newServer registers the capture tools.
func newServer(c *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"newsgrab",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("capture_article",
		mcp.WithDescription("Capture one news article through the logged-in browser session. Saves the article's HTML, source URL, publication date and embedded photo under the output directory and returns a summary."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The article URL to capture"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Reuse a capture of the same URL younger than this many milliseconds (default: 0, always capture)"),
		),
	), handleCaptureArticle(c))

	s.AddTool(mcp.NewTool("capture_batch",
		mcp.WithDescription("Capture several news articles one after another. A failing URL does not stop the rest. Returns one line per URL."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Article URLs to capture"),
			mcp.WithStringItems(),
		),
	), handleCaptureBatch(c))

	return s
}

func handleCaptureArticle(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		req := models.CaptureRequest{URL: url, MaxAge: request.GetInt("max_age", 0)}
		var resp models.CaptureResponse
		if err := c.do(ctx, http.MethodPost, "/api/v1/capture", req, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(describeError(resp.Error, "capture failed")), nil
		}

		var sb strings.Builder
		writeArticle(&sb, resp.Article)
		if resp.CacheStatus == "hit" {
			sb.WriteString("(from cache)\n")
		}
		fmt.Fprintf(&sb, "Took %d ms\n", resp.Timing.TotalMs)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleCaptureBatch(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil || len(urls) == 0 {
			return mcp.NewToolResultError("urls is required and must be a non-empty array of strings"), nil
		}

		var started models.BatchResponse
		if err := c.do(ctx, http.MethodPost, "/api/v1/batch", models.BatchRequest{URLs: urls}, &started); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}
		if started.ID == "" {
			return mcp.NewToolResultError("batch job creation failed"), nil
		}

		status, err := c.waitBatch(ctx, started.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Batch %s: %s (%d/%d done)\n\n", status.ID, status.Status, status.Completed, status.Total)
		for i, item := range status.Results {
			if item.Success {
				fmt.Fprintf(&sb, "--- [%d] %s ---\n", i+1, item.URL)
				writeArticle(&sb, item.Article)
				sb.WriteString("\n")
			} else {
				fmt.Fprintf(&sb, "--- [%d] %s ---\nFAILED: %s\n\n", i+1, item.URL, describeError(item.Error, "unknown error"))
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func writeArticle(sb *strings.Builder, a *models.ArticleSummary) {
	if a == nil {
		return
	}
	fmt.Fprintf(sb, "Title: %s\nDate: %s\nSource: %s\nSaved to: %s\n", a.Title, a.PublishedDate, a.SourceURL, a.Directory)
	if a.HasImage {
		fmt.Fprintf(sb, "Photo: %d bytes\n", a.ImageBytes)
	} else {
		sb.WriteString("Photo: none\n")
	}
}

func describeError(e *models.ErrorDetail, fallback string) string {
	if e == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
