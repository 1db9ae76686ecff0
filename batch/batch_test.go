package batch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/newsgrab/capture"
	"github.com/use-agent/newsgrab/models"
)

type fakeCapturer struct {
	calls []string
	fail  map[string]error
}

func (f *fakeCapturer) Capture(_ context.Context, u string) (*capture.Result, error) {
	f.calls = append(f.calls, u)
	if err := f.fail[u]; err != nil {
		return nil, err
	}
	rec := &models.ArticleRecord{Title: u, SourceURL: u}
	if strings.HasSuffix(u, "photo") {
		rec.Image = []byte{1}
	}
	return &capture.Result{Record: rec, Dir: "output/" + u}, nil
}

func TestReadURLList(t *testing.T) {
	in := "\uFEFFhttps://a.example/1\n\n# comment\n  https://b.example/2  \r\nhttps://a.example/1\n"

	urls, err := ReadURLList(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/1", "https://b.example/2"}, urls)
}

func TestRunner_IsolatesFailures(t *testing.T) {
	fc := &fakeCapturer{fail: map[string]error{
		"u2": models.NewCaptureError(models.ErrCodeNavigationTimeout, "timeout", nil),
	}}
	var seen []int

	results := NewRunner(fc, 0).Run(context.Background(), []string{"u1", "u2", "u3photo"}, func(i int, _ *Result) {
		seen = append(seen, i)
	})

	assert.Equal(t, []string{"u1", "u2", "u3photo"}, fc.calls)
	assert.Equal(t, []int{0, 1, 2}, seen)
	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.True(t, models.IsCode(results[1].Err, models.ErrCodeNavigationTimeout))
	assert.True(t, results[2].HasImage)
	assert.Equal(t, "output/u3photo", results[2].Dir)

	s := Summarize(results)
	assert.Equal(t, Summary{Total: 3, Succeeded: 2, Failed: 1, WithImage: 1}, s)
	assert.False(t, s.AllFailed())
	assert.Equal(t, "partial", s.Status())
}

func TestRunner_Cancelled(t *testing.T) {
	fc := &fakeCapturer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(fc, time.Hour).Run(ctx, []string{"u1", "u2"}, nil)

	assert.Empty(t, fc.calls)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, errors.Is(r.Err, context.Canceled))
	}
	assert.True(t, Summarize(results).AllFailed())
}

func TestSummary_Status(t *testing.T) {
	assert.Equal(t, "completed", Summary{Total: 1, Succeeded: 1}.Status())
	assert.Equal(t, "failed", Summary{Total: 1, Failed: 1}.Status())
	assert.False(t, Summary{}.AllFailed())
}
