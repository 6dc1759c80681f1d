package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/models"
)

const contentTypeJPEG = "image/jpeg"

// Screenshot returns a handler for GET /screenshot.
//
// Query parameters:
//
//	url       (required) absolute http(s) target
//	mobile    "true" for mobile device emulation
//	width     viewport width in pixels
//	height    viewport height in pixels
//	quality   JPEG quality 0-100
//	fullPage  "true" to capture beyond the viewport
//
// Unlike /render and /preview, navigation failures here do not produce a
// degraded body: a forbidden target yields 403 and everything else 500.
func Screenshot(eng Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Query("url")
		if target == "" {
			respondError(c, models.NewRenderError(models.ErrCodeInvalidInput,
				"missing required query parameter: url", nil))
			return
		}

		req := &models.RenderRequest{
			URL:               target,
			Mobile:            boolQuery(c, "mobile"),
			Mode:              models.ModeScreenshot,
			ScreenshotOptions: map[string]interface{}{},
		}
		if w, ok := intQuery(c, "width"); ok {
			req.Viewport.Width = w
		}
		if h, ok := intQuery(c, "height"); ok {
			req.Viewport.Height = h
		}
		if q, ok := intQuery(c, "quality"); ok {
			req.ScreenshotOptions["quality"] = q
		}
		if boolQuery(c, "fullPage") {
			req.ScreenshotOptions["fullPage"] = true
		}

		bin, err := eng.Screenshot(c.Request.Context(), req)
		if err != nil {
			respondScreenshotError(c, err)
			return
		}

		c.Data(http.StatusOK, contentTypeJPEG, bin)
	}
}

// respondScreenshotError collapses the error surface for screenshots:
// invalid input keeps 400, forbidden targets keep 403, and every other
// failure (no response, timeout, browser down) is reported as 500.
func respondScreenshotError(c *gin.Context, err error) {
	switch models.CodeOf(err) {
	case models.ErrCodeInvalidInput, models.ErrCodeForbidden:
		respondError(c, err)
	default:
		respondError(c, models.NewRenderError(models.ErrCodeInternal,
			"screenshot capture failed", err))
	}
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
