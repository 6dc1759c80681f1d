package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/models"
)

// Preview returns a handler for GET /preview.
//
// Query parameters:
//
//	url     (required) absolute http(s) target
//	mobile  "true" for mobile device emulation
//
// The JSON body carries the extracted metadata; its status field is the
// resolved render status (including meta-tag overrides), independent of the
// transport-level 200.
func Preview(eng Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Query("url")
		if target == "" {
			respondError(c, models.NewRenderError(models.ErrCodeInvalidInput,
				"missing required query parameter: url", nil))
			return
		}

		resp, err := eng.Preview(c.Request.Context(), &models.RenderRequest{
			URL:    target,
			Mobile: boolQuery(c, "mobile"),
			Mode:   models.ModePreview,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
