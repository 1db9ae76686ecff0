package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newsgrab/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// BusyReporter reports whether a capture is in progress.
type BusyReporter interface {
	Busy() bool
}

// Health returns a handler for GET /api/v1/health. Status is "busy" while
// the single browser session is in use, since new captures will queue.
func Health(br BusyReporter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		busy := br.Busy()
		status := "healthy"
		if busy {
			status = "busy"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Busy:    busy,
			Version: Version,
		})
	}
}
