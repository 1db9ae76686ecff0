package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/newsgrab/extract"
)

// big5Title is "中文" encoded as Big5.
var big5Title = []byte{0xa4, 0xa4, 0xa4, 0xe5}

func storyPage() []byte {
	body := strings.Repeat("The council approved the harbour budget after a long debate. ", 8)
	var b []byte
	b = append(b, "<html><head><title>"...)
	b = append(b, big5Title...)
	b = append(b, "</title></head><body><div class=\"story-content\"><h1>Harbour Budget</h1>"+
		"<div class=\"story-source\">2025-11-06</div><p>"+body+"</p></div></body></html>"...)
	return b
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sid=abc", r.Header.Get("Cookie"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome")
		w.Header().Set("Content-Type", "text/html; charset=big5")
		w.Write(storyPage())
	}))
	defer srv.Close()

	res, err := NewProber("", "").Probe(context.Background(), srv.URL+"/Story?no=1", "sid=abc", ".story-content", extract.DefaultSelectors)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "中文", res.PageTitle)
	assert.True(t, res.ContainerFound)
	assert.Equal(t, "Harbour Budget", res.Story.Title)
	assert.Equal(t, "2025-11-06", res.Story.Date)
	assert.False(t, res.NeedsBrowser)
	assert.Contains(t, res.Excerpt, "harbour budget")
}

func TestProbe_LoginWall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Sign in</title></head><body><div id="app"></div>` +
			`<noscript>Please enable JavaScript</noscript></body></html>`))
	}))
	defer srv.Close()

	res, err := NewProber("", "").Probe(context.Background(), srv.URL, "", ".story-content", extract.DefaultSelectors)
	require.NoError(t, err)

	assert.False(t, res.ContainerFound)
	assert.Nil(t, res.Story)
	assert.True(t, res.NeedsBrowser)
	assert.Equal(t, "Sign in", res.PageTitle)
}

func TestProbe_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewProber("", "").Probe(context.Background(), srv.URL, "", ".story-content", extract.DefaultSelectors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b", excerpt("  a \n b ", 10))
	assert.Equal(t, "abc…", excerpt("abcdef", 3))
}
