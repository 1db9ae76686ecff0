package capture

import (
	"context"
	"log/slog"
	"time"
)

// AwaitImage joins the content path with the interceptor. It waits settle
// first, giving late image loads time to start, then waits up to timeout
// for a capture. Running out of time is not an error: the caller proceeds
// without an image.
func AwaitImage(ctx context.Context, ic *Interceptor, settle, timeout time.Duration) ([]byte, bool) {
	if !sleep(ctx, settle) {
		return ic.Image()
	}

	if timeout <= 0 {
		return ic.Image()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ic.Done():
	case <-timer.C:
		slog.Info("no photo within image wait, continuing without it", "timeout", timeout)
	case <-ctx.Done():
	}
	return ic.Image()
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
