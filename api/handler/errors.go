package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newsgrab/models"
)

// respondError maps a CaptureError to its HTTP status and writes a
// structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	ce := models.AsCaptureError(err)
	c.JSON(mapErrorToStatus(ce), models.CaptureResponse{
		Success: false,
		Error:   ce.ToDetail(),
		Timing:  timing,
	})
}

// badRequest rejects an unparsable request body.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.CaptureError) int {
	switch e.Code {
	case models.ErrCodeNavigationTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeStorageConflict:
		return http.StatusConflict // 409
	case models.ErrCodeInvalidTitle:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited, models.ErrCodeLLMRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeLLMFailure, models.ErrCodeLLMAuthFailure:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
