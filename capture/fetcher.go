package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/newsgrab/extract"
	"github.com/use-agent/newsgrab/models"
)

// Options controls one fetch.
type Options struct {
	// ContentSelector locates the content container.
	ContentSelector string

	// Selectors locate title and date inside the container.
	Selectors extract.Selectors

	// Target identifies the photo response.
	Target Target

	// ContentWaitTimeout bounds the container wait. Exceeding it fails the fetch.
	ContentWaitTimeout time.Duration

	// SettleDelay precedes the image wait.
	SettleDelay time.Duration

	// ImageWaitTimeout bounds the image wait. Exceeding it drops the image.
	ImageWaitTimeout time.Duration
}

// DefaultOptions mirrors the story-content site layout.
func DefaultOptions() Options {
	return Options{
		ContentSelector:    ".story-content",
		Selectors:          extract.DefaultSelectors,
		Target:             DefaultTarget,
		ContentWaitTimeout: 10 * time.Second,
		SettleDelay:        2 * time.Second,
		ImageWaitTimeout:   6 * time.Second,
	}
}

// Fetcher retrieves one article per call, each in its own browser session.
type Fetcher struct {
	browser Browser
	cookies []AuthCookie
	opts    Options
}

// NewFetcher creates a Fetcher that authenticates every session with cookies.
func NewFetcher(browser Browser, cookies []AuthCookie, opts Options) *Fetcher {
	return &Fetcher{browser: browser, cookies: cookies, opts: opts}
}

// Fetch loads targetURL and returns the article record.
//
// Order matters:
//
//  1. Navigate to the origin so cookies can be scoped before the article loads.
//  2. Inject cookies.
//  3. Subscribe the interceptor, before the article navigation, or early
//     photo responses are missed.
//  4. Navigate to the article and wait for the content container.
//  5. Race the interceptor against the image deadline.
//
// The session and the listener are released on every return path. A
// missing container fails with ErrCodeNavigationTimeout; a missing photo
// only leaves Image nil.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*models.ArticleRecord, error) {
	origin, err := Origin(targetURL)
	if err != nil {
		return nil, models.NewCaptureError(models.ErrCodeInvalidInput, "invalid target URL", err)
	}

	sess, err := f.browser.NewSession(ctx)
	if err != nil {
		return nil, models.NewCaptureError(models.ErrCodeBrowserCrash, "failed to open browser session", err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("session close failed", "url", targetURL, "error", closeErr)
		}
	}()

	if err := sess.Navigate(ctx, origin); err != nil {
		return nil, categorizeError(err, "navigation to origin failed")
	}
	InjectCookies(ctx, sess, origin, f.cookies)

	ic := NewInterceptor(f.opts.Target, sess)
	stopListening := f.listen(ctx, sess, ic)
	defer stopListening()

	if err := sess.Navigate(ctx, targetURL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	content, err := f.waitContent(ctx, sess)
	if err != nil {
		return nil, err
	}

	story, err := extract.ParseStory(content.Markup, f.opts.Selectors)
	if err != nil {
		return nil, models.NewCaptureError(models.ErrCodeInvalidTitle, "failed to parse content container", err)
	}
	if story.Title == "" {
		return nil, models.NewCaptureError(models.ErrCodeInvalidTitle,
			fmt.Sprintf("no %q heading inside the content container", f.opts.Selectors.Title), nil)
	}
	slog.Info("content located", "url", targetURL, "title", story.Title, "date", story.Date)
	if refs := extract.ImageSources(content.Markup, targetURL); len(refs) > 0 {
		slog.Debug("container references images", "url", targetURL, "count", len(refs))
	}

	rec := &models.ArticleRecord{
		Title:         story.Title,
		Markup:        content.Markup,
		PlainText:     content.Text,
		SourceURL:     targetURL,
		PublishedDate: story.Date,
	}
	if image, ok := AwaitImage(ctx, ic, f.opts.SettleDelay, f.opts.ImageWaitTimeout); ok {
		rec.Image = image
	}
	return rec, nil
}

// listen subscribes ic to the session's response stream and returns the
// func that detaches it and waits for the listener goroutine to exit.
// A failed subscription only costs the photo.
func (f *Fetcher) listen(ctx context.Context, sess Session, ic *Interceptor) func() {
	listenCtx, cancel := context.WithCancel(ctx)

	events, stop, err := sess.Responses(listenCtx)
	if err != nil {
		slog.Warn("response listener unavailable, photo capture disabled", "error", err)
		cancel()
		return func() {}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ic.Run(listenCtx, events)
	}()

	return func() {
		cancel()
		stop()
		wg.Wait()
	}
}

// waitContent waits for the content container within ContentWaitTimeout.
func (f *Fetcher) waitContent(ctx context.Context, sess Session) (*Content, error) {
	waitCtx, cancel := context.WithTimeout(ctx, f.opts.ContentWaitTimeout)
	defer cancel()

	content, err := sess.WaitContent(waitCtx, f.opts.ContentSelector)
	if err != nil {
		if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, models.NewCaptureError(models.ErrCodeNavigationTimeout,
				fmt.Sprintf("content container %q did not appear within %s", f.opts.ContentSelector, f.opts.ContentWaitTimeout),
				err,
			)
		}
		return nil, categorizeError(err, "waiting for content container failed")
	}
	return content, nil
}

// Origin returns scheme://host[:port] of rawURL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// categorizeError wraps raw errors into typed CaptureErrors.
func categorizeError(err error, msg string) *models.CaptureError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCaptureError(models.ErrCodeNavigationTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCaptureError(models.ErrCodeNavigationTimeout, "capture canceled", err)
	default:
		return models.NewCaptureError(models.ErrCodeNavigation, msg, err)
	}
}
