package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/cache"
	"github.com/molistry/rendertron/content"
	"github.com/molistry/rendertron/models"
)

const (
	contentTypeHTML     = "text/html; charset=utf-8"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
)

// Render returns a handler for GET /render.
//
// Query parameters:
//
//	url     (required) absolute http(s) target
//	mobile  "true" for mobile device emulation
//	format  "html" (default) or "markdown"
//
// The response carries the resolved status code (after the page's own
// meta-tag overrides), any page-declared custom header, and the sanitized
// snapshot. Successful 200 responses are cached when cc is non-nil.
func Render(eng Engine, cc *cache.Cache, conv *content.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Query("url")
		if target == "" {
			respondError(c, models.NewRenderError(models.ErrCodeInvalidInput,
				"missing required query parameter: url", nil))
			return
		}
		mobile := boolQuery(c, "mobile")
		format := c.DefaultQuery("format", "html")
		if format != "html" && format != "markdown" {
			respondError(c, models.NewRenderError(models.ErrCodeInvalidInput,
				"format must be html or markdown", nil))
			return
		}

		contentType := contentTypeHTML
		if format == "markdown" {
			contentType = contentTypeMarkdown
		}

		key := cache.Key(target, mobile, format)
		if cc != nil {
			if cached, hit := cc.Get(key); hit {
				writeSerialized(c, cached, contentType)
				return
			}
		}

		resp, err := eng.Serialize(c.Request.Context(), &models.RenderRequest{
			URL:    target,
			Mobile: mobile,
			Mode:   models.ModeFull,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		if format == "markdown" {
			md, mdErr := conv.Markdown(resp.Content, target)
			if mdErr != nil {
				respondError(c, models.NewRenderError(models.ErrCodeInternal,
					"markdown conversion failed", mdErr))
				return
			}
			resp = &models.SerializedResponse{
				Status:        resp.Status,
				CustomHeaders: resp.CustomHeaders,
				Content:       md,
			}
		}

		if cc != nil && resp.Status == http.StatusOK {
			cc.Set(key, resp)
		}
		writeSerialized(c, resp, contentType)
	}
}

func writeSerialized(c *gin.Context, resp *models.SerializedResponse, contentType string) {
	for k, v := range resp.CustomHeaders {
		c.Header(k, v)
	}
	c.Data(resp.Status, contentType, []byte(resp.Content))
}

func boolQuery(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
