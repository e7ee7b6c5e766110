package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/version"
)

var startedAt = time.Now()

type infoResponse struct {
	Service string `json:"service"`
	version.Info
	Uptime string `json:"uptime"`
}

// Info reports the build that is serving and how long it has been up.
func Info(serviceName string) gin.HandlerFunc {
	build := version.Get()
	build.Version = build.Short()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, infoResponse{
			Service: serviceName,
			Info:    build,
			Uptime:  time.Since(startedAt).Round(time.Second).String(),
		})
	}
}
