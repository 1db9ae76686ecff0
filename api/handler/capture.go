package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newsgrab/cache"
	"github.com/use-agent/newsgrab/capture"
	"github.com/use-agent/newsgrab/models"
)

// Capturer captures one article. Implementations serialize captures.
type Capturer interface {
	BusyReporter
	Capture(ctx context.Context, targetURL string) (*capture.Result, error)
}

// Capture returns a handler for POST /api/v1/capture.
//
// Flow:
//  1. Parse and validate the request.
//  2. With max_age set, answer from the cache when a recent capture exists.
//  3. Capture (fetch + store), queuing behind any running capture.
//  4. Record the result in the cache and respond.
func Capture(cp Capturer, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.CaptureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		maxAge := time.Duration(req.MaxAge) * time.Millisecond

		if cc != nil && maxAge > 0 {
			if cached, hit := cc.Get(req.URL, maxAge); hit {
				c.JSON(http.StatusOK, models.CaptureResponse{
					Success:     true,
					Article:     cached,
					CacheStatus: "hit",
					Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
				})
				return
			}
		}

		res, err := cp.Capture(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err, models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()})
			return
		}

		resp := models.CaptureResponse{
			Success: true,
			Article: models.Summarize(res.Record, res.Dir),
			Timing: models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: res.FetchMs,
				StoreMs: res.StoreMs,
			},
		}
		if cc != nil {
			cc.Set(req.URL, resp.Article)
			if maxAge > 0 {
				resp.CacheStatus = "miss"
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
