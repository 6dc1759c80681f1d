package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/models"
)

// Auth returns API-key middleware guarding the render endpoints. Every
// request behind it costs a browser tab for several seconds, so deployments
// exposed beyond a trusted network should configure keys.
//
// Accepted header styles:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// With no keys configured the middleware is a no-op: the common deployment is
// a private prerender backend sitting behind its own reverse proxy. The
// accepted key is stored on the request context so the rate limiter can bucket
// by key instead of by client IP.
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keySet := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		key := extractAPIKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUnauthorized,
					Message: "rendering requires an API key: X-API-Key header or Authorization: Bearer <key>",
				},
			})
			return
		}

		if _, valid := keySet[key]; !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUnauthorized,
					Message: "API key not recognized",
				},
			})
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}

// extractAPIKey tries X-API-Key first, then Authorization: Bearer.
func extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
