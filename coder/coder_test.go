package coder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/newsgrab/models"
	"github.com/use-agent/newsgrab/store"
)

type fakeModel struct {
	calls   []string
	images  [][]byte
	prompts []string
	fail    map[string]error
}

func (m *fakeModel) Code(_ context.Context, prompt, article string, image []byte) (Fields, *models.LLMUsage, error) {
	m.calls = append(m.calls, article)
	m.images = append(m.images, image)
	m.prompts = append(m.prompts, prompt)
	for needle, err := range m.fail {
		if strings.Contains(article, needle) {
			return nil, nil, err
		}
	}
	return Fields{{"topic", "news"}, {"title", "override"}}, &models.LLMUsage{TotalTokens: 3}, nil
}

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "output"), store.PolicySanitize)
	for _, rec := range []*models.ArticleRecord{
		{Title: "Alpha", Markup: "<div><h1>Alpha</h1><p>first body</p></div>", SourceURL: "https://n.example/a", PublishedDate: "d1", Image: []byte{0xff, 0xd8}},
		{Title: "Beta", Markup: "<div><h1>Beta</h1><p>second body</p></div>", SourceURL: "https://n.example/b", PublishedDate: "d2"},
	} {
		_, err := s.Save(rec)
		require.NoError(t, err)
	}
	return s
}

func TestRunner_Run(t *testing.T) {
	s := seedStore(t)
	m := &fakeModel{}

	rows, usage, err := NewRunner(m, "").Run(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, Fields{{"title", "override"}, {"url", "https://n.example/a"}, {"date", "d1"}, {"topic", "news"}}, rows[0])
	v, _ := rows[1].Get("url")
	assert.Equal(t, "https://n.example/b", v)
	assert.Equal(t, 6, usage.TotalTokens)

	require.Len(t, m.calls, 2)
	assert.Contains(t, m.calls[0], "first body")
	assert.NotContains(t, m.calls[0], "<p>", "markup is sent as markdown")
	assert.Equal(t, []byte{0xff, 0xd8}, m.images[0])
	assert.Nil(t, m.images[1])
	assert.Equal(t, DefaultPrompt, m.prompts[0])
}

func TestRunner_SkipsFailedArticle(t *testing.T) {
	s := seedStore(t)
	m := &fakeModel{fail: map[string]error{
		"first body": models.NewCaptureError(models.ErrCodeLLMFailure, "bad json", nil),
	}}

	rows, _, err := NewRunner(m, "p").Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, m.calls, 2)
}

func TestRunner_AuthFailureStops(t *testing.T) {
	s := seedStore(t)
	m := &fakeModel{fail: map[string]error{
		"body": models.NewCaptureError(models.ErrCodeLLMAuthFailure, "bad key", nil),
	}}

	rows, _, err := NewRunner(m, "p").Run(context.Background(), s)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrCodeLLMAuthFailure))
	assert.Empty(t, rows)
	assert.Len(t, m.calls, 1)
}

func TestRunner_AllFailed(t *testing.T) {
	s := seedStore(t)
	m := &fakeModel{fail: map[string]error{"body": errors.New("boom")}}

	rows, _, err := NewRunner(m, "p").Run(context.Background(), s)
	require.Error(t, err)
	assert.Empty(t, rows)
}

func TestRunner_MissingOutputDir(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "missing"), store.PolicySanitize)

	_, _, err := NewRunner(&fakeModel{}, "p").Run(context.Background(), s)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrCodeStorage))
}

func TestLoadPrompt(t *testing.T) {
	p, err := LoadPrompt("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, p)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("  code this\n"), 0o644))
	p, err = LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "code this", p)
}
