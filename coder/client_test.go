package coder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/newsgrab/models"
)

func TestClient_Code(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices":[{"message":{"content":"{\"topic\":\"politics\",\"score\":3,\"note\":null}"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), Params{APIKey: "k", Model: "m", BaseURL: srv.URL + "/v1/"})
	fields, usage, err := c.Code(context.Background(), "code it", "# Title", []byte{0xff, 0xd8, 0xff, 0xe0})
	require.NoError(t, err)

	assert.Equal(t, Fields{{"topic", "politics"}, {"score", "3"}, {"note", ""}}, fields)
	assert.Equal(t, &models.LLMUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, usage)

	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 1)
	parts := got.Messages[0].Content
	require.Len(t, parts, 3)
	assert.Equal(t, "code it", parts[0].Text)
	assert.Equal(t, "# Title", parts[1].Text)
	assert.Equal(t, "image_url", parts[2].Type)
	assert.True(t, strings.HasPrefix(parts[2].ImageURL.URL, "data:image/jpeg;base64,"))
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestClient_CodeWithoutImage(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("{\"choices\":[{\"message\":{\"content\":\"```json\\n{\\\"a\\\":\\\"b\\\"}\\n```\"}}]}"))
	}))
	defer srv.Close()

	c := NewClient(nil, Params{BaseURL: srv.URL})
	fields, _, err := c.Code(context.Background(), "p", "body", nil)
	require.NoError(t, err)

	assert.Equal(t, Fields{{"a", "b"}}, fields)
	assert.Len(t, got.Messages[0].Content, 2)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, models.ErrCodeLLMAuthFailure},
		{http.StatusForbidden, models.ErrCodeLLMAuthFailure},
		{http.StatusTooManyRequests, models.ErrCodeLLMRateLimited},
		{http.StatusInternalServerError, models.ErrCodeLLMFailure},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))

		_, _, err := NewClient(nil, Params{BaseURL: srv.URL}).Code(context.Background(), "p", "b", nil)
		srv.Close()

		require.Error(t, err)
		assert.True(t, models.IsCode(err, tt.code), "status %d: %v", tt.status, err)
	}
}

func TestClient_InvalidJSONContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"[1,2]"}}]}`))
	}))
	defer srv.Close()

	_, _, err := NewClient(nil, Params{BaseURL: srv.URL}).Code(context.Background(), "p", "b", nil)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrCodeLLMFailure))
}
