package capture

import (
	"context"
	"log/slog"
	"sync"
)

// Interceptor watches response events for the first one matching its
// Target and keeps that response's body. Capture happens at most once.
type Interceptor struct {
	target Target
	bodies BodyFetcher

	once  sync.Once
	done  chan struct{}
	image []byte
}

// NewInterceptor creates an Interceptor fetching bodies through bodies.
func NewInterceptor(target Target, bodies BodyFetcher) *Interceptor {
	return &Interceptor{
		target: target,
		bodies: bodies,
		done:   make(chan struct{}),
	}
}

// Run consumes events until ctx ends or events is closed. Events arriving
// after the capture are ignored.
func (ic *Interceptor) Run(ctx context.Context, events <-chan ResponseEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if ic.Captured() {
				continue
			}
			ic.handle(ctx, e)
		}
	}
}

// handle fetches the body of a matching event. Failures stay local to the
// event so a later match can still be captured.
func (ic *Interceptor) handle(ctx context.Context, e ResponseEvent) {
	if !ic.target.Matches(e.MIMEType, e.URL) {
		return
	}

	body, err := ic.bodies.ResponseBody(ctx, e.RequestID)
	if err != nil {
		slog.Debug("photo body fetch failed, still listening",
			"url", e.URL,
			"requestID", e.RequestID,
			"error", err,
		)
		return
	}
	data, err := body.Bytes()
	if err != nil {
		slog.Warn("photo body undecodable, still listening",
			"url", e.URL,
			"error", err,
		)
		return
	}
	if len(data) == 0 {
		slog.Debug("photo body empty, still listening", "url", e.URL)
		return
	}

	if ic.capture(data) {
		slog.Info("photo captured", "url", e.URL, "bytes", len(data))
	}
}

// capture stores data unless an image was already captured.
func (ic *Interceptor) capture(data []byte) bool {
	stored := false
	ic.once.Do(func() {
		ic.image = data
		stored = true
		close(ic.done)
	})
	return stored
}

// Done is closed once an image has been captured.
func (ic *Interceptor) Done() <-chan struct{} {
	return ic.done
}

// Captured reports whether an image has been captured.
func (ic *Interceptor) Captured() bool {
	select {
	case <-ic.done:
		return true
	default:
		return false
	}
}

// Image returns the captured bytes, if any.
func (ic *Interceptor) Image() ([]byte, bool) {
	if !ic.Captured() {
		return nil, false
	}
	return ic.image, true
}
