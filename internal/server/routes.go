package server

import (
	"net/http"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/action"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startedAt = time.Now()

func registerRoutes(r *gin.Engine, d *action.Dispatcher) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(startedAt).String(),
			"service":  "crowdeckd",
			"bindings": d.Table().Len(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/bindings", func(c *gin.Context) {
		bindings := d.Table().Bindings()
		out := make([]gin.H, 0, len(bindings))
		for id, b := range bindings {
			out = append(out, gin.H{
				"identity": id.String(),
				"action":   b.Action,
			})
		}
		c.JSON(http.StatusOK, gin.H{"bindings": out})
	})
	api.GET("/executions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"executions": d.Records().Recent()})
	})
}
