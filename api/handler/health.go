package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/models"
)

// Health returns a handler for GET /healthz. It reports 200 while the
// browser connection is alive and 503 once it is lost, so load balancers can
// drain the instance while the supervisor relaunches Chromium.
func Health(st StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, maxPages, started := st.Stats()
		alive := st.Alive()

		resp := models.HealthResponse{
			Status:        "ok",
			UptimeSeconds: int64(time.Since(started).Seconds()),
			ActivePages:   active,
			MaxPages:      maxPages,
			BrowserAlive:  alive,
		}

		status := http.StatusOK
		if !alive {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}
