package capture

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/newsgrab/models"
)

// Saver persists a fetched record and returns the directory it wrote.
type Saver interface {
	Save(rec *models.ArticleRecord) (string, error)
}

// Result is the outcome of one capture.
type Result struct {
	Record  *models.ArticleRecord
	Dir     string
	FetchMs int64
	StoreMs int64
}

// Capturer fetches and stores articles one at a time. It is safe for
// concurrent use; callers queue behind a single browser session.
type Capturer struct {
	fetcher *Fetcher
	saver   Saver

	mu   sync.Mutex
	busy atomic.Bool
}

// NewCapturer creates a Capturer.
func NewCapturer(fetcher *Fetcher, saver Saver) *Capturer {
	return &Capturer{fetcher: fetcher, saver: saver}
}

// Capture fetches targetURL and stores the record. Nothing is written when
// the fetch fails.
func (c *Capturer) Capture(ctx context.Context, targetURL string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy.Store(true)
	defer c.busy.Store(false)

	fetchStart := time.Now()
	rec, err := c.fetcher.Fetch(ctx, targetURL)
	fetchMs := time.Since(fetchStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	storeStart := time.Now()
	dir, err := c.saver.Save(rec)
	storeMs := time.Since(storeStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	slog.Info("article captured",
		"url", targetURL,
		"title", rec.Title,
		"dir", dir,
		"image", rec.HasImage(),
		"fetchMs", fetchMs,
	)
	return &Result{Record: rec, Dir: dir, FetchMs: fetchMs, StoreMs: storeMs}, nil
}

// Busy reports whether a capture is in progress.
func (c *Capturer) Busy() bool {
	return c.busy.Load()
}
