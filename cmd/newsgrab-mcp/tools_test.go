package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/newsgrab/models"
)

func callTool(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestCaptureArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/capture", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-API-Key"))
		var req models.CaptureRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5000, req.MaxAge)

		json.NewEncoder(w).Encode(models.CaptureResponse{
			Success: true,
			Article: &models.ArticleSummary{Title: "Sample Title", Directory: "output/Sample Title", HasImage: true, ImageBytes: 42},
		})
	}))
	defer srv.Close()

	text, isErr := callTool(t, handleCaptureArticle(newAPIClient(srv.URL, "k", time.Millisecond)),
		map[string]any{"url": "https://news.example/a", "max_age": 5000})

	assert.False(t, isErr)
	assert.Contains(t, text, "Title: Sample Title")
	assert.Contains(t, text, "Photo: 42 bytes")
}

func TestCaptureArticle_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		json.NewEncoder(w).Encode(models.CaptureResponse{
			Error: &models.ErrorDetail{Code: models.ErrCodeNavigationTimeout, Message: "content container did not appear"},
		})
	}))
	defer srv.Close()

	text, isErr := callTool(t, handleCaptureArticle(newAPIClient(srv.URL, "k", time.Millisecond)),
		map[string]any{"url": "https://news.example/a"})

	assert.True(t, isErr)
	assert.Contains(t, text, "NAVIGATION_TIMEOUT")
}

func TestCaptureArticle_MissingURL(t *testing.T) {
	text, isErr := callTool(t, handleCaptureArticle(newAPIClient("http://unused", "k", time.Millisecond)), map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "url is required")
}

func TestCaptureBatch(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/batch", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.BatchResponse{ID: "batch-1", Status: "processing", Total: 2})
	})
	mux.HandleFunc("GET /api/v1/batch/batch-1", func(w http.ResponseWriter, r *http.Request) {
		status := models.BatchStatusResponse{ID: "batch-1", Status: "processing", Total: 2}
		if polls.Add(1) > 1 {
			status.Status = "partial"
			status.Completed = 2
			status.Results = []*models.BatchItem{
				{URL: "https://news.example/a", Success: true, Article: &models.ArticleSummary{Title: "A"}},
				{URL: "https://news.example/b", Error: &models.ErrorDetail{Code: models.ErrCodeInvalidTitle, Message: "no heading"}},
			}
		}
		json.NewEncoder(w).Encode(status)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	text, isErr := callTool(t, handleCaptureBatch(newAPIClient(srv.URL, "k", time.Millisecond)),
		map[string]any{"urls": []any{"https://news.example/a", "https://news.example/b"}})

	assert.False(t, isErr)
	assert.Contains(t, text, "Batch batch-1: partial (2/2 done)")
	assert.Contains(t, text, "Title: A")
	assert.Contains(t, text, "FAILED: [INVALID_TITLE] no heading")
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}
