package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/models"
)

// respondError maps a pipeline error to an HTTP status and writes the
// standard JSON error envelope.
func respondError(c *gin.Context, err error) {
	status := statusFor(models.CodeOf(err))

	var detail *models.ErrorDetail
	if re, ok := err.(*models.RenderError); ok {
		detail = re.ToDetail()
	} else {
		detail = &models.ErrorDetail{
			Code:    models.ErrCodeInternal,
			Message: err.Error(),
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"path", c.Request.URL.Path,
			"code", detail.Code,
			"error", err)
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: detail})
}

func statusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case models.ErrCodeForbidden:
		return http.StatusForbidden
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeBrowserUnavailable:
		return http.StatusServiceUnavailable
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
