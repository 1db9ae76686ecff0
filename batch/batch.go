// Package batch captures a list of article URLs one after another.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/newsgrab/capture"
)

// Capturer captures one article.
type Capturer interface {
	Capture(ctx context.Context, targetURL string) (*capture.Result, error)
}

// Result is the outcome for one URL.
type Result struct {
	URL      string
	Capture  *capture.Result // nil on failure
	Dir      string
	HasImage bool
	Err      error
}

// OK reports whether the URL was captured.
func (r *Result) OK() bool { return r.Err == nil }

// ReadURLList reads one URL per line. Blank lines and lines starting with
// '#' are skipped, surrounding whitespace is trimmed and repeats are
// dropped keeping the first occurrence.
func ReadURLList(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\uFEFF"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}

// Runner captures URLs strictly in order with at most one session open.
// A failing URL is recorded and the next one proceeds.
type Runner struct {
	capturer Capturer
	limiter  *rate.Limiter
}

// NewRunner creates a Runner that starts sessions at least gap apart.
func NewRunner(c Capturer, gap time.Duration) *Runner {
	limit := rate.Inf
	if gap > 0 {
		limit = rate.Every(gap)
	}
	return &Runner{capturer: c, limiter: rate.NewLimiter(limit, 1)}
}

// Run captures every URL and returns one Result per URL in input order.
// onResult, if non-nil, is called after each URL. When ctx ends the
// remaining URLs are recorded with ctx's error.
func (r *Runner) Run(ctx context.Context, urls []string, onResult func(int, *Result)) []*Result {
	results := make([]*Result, 0, len(urls))
	for i, u := range urls {
		res := r.one(ctx, u)
		results = append(results, res)
		if onResult != nil {
			onResult(i, res)
		}
	}
	return results
}

func (r *Runner) one(ctx context.Context, targetURL string) *Result {
	res := &Result{URL: targetURL}
	if err := r.limiter.Wait(ctx); err != nil {
		res.Err = err
		return res
	}

	captured, err := r.capturer.Capture(ctx, targetURL)
	if err != nil {
		slog.Warn("capture failed, continuing with next URL", "url", targetURL, "error", err)
		res.Err = err
		return res
	}
	res.Capture = captured
	res.Dir = captured.Dir
	res.HasImage = captured.Record.HasImage()
	return res
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	WithImage int
}

// Summarize counts results.
func Summarize(results []*Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.HasImage {
			s.WithImage++
		}
	}
	return s
}

// AllFailed reports whether no URL was captured out of a non-empty batch.
func (s Summary) AllFailed() bool {
	return s.Total > 0 && s.Succeeded == 0
}

// Status maps the summary to a job status string.
func (s Summary) Status() string {
	switch {
	case s.Failed == 0:
		return "completed"
	case s.Succeeded == 0:
		return "failed"
	default:
		return "partial"
	}
}
