// Package api exposes report runs over HTTP: dataset uploads or database
// queries in, report JSON and artifacts out, diagnostics streamed as SSE.
package api

import (
	"net/http"
	"time"

	"goeda/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the report routes
func NewRouter(reports *ReportHandler, hub *EventHub, logger *internal.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger.Named("http")))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	router.GET("/events", hub.HandleSSE)

	group := router.Group("/reports")
	group.GET("", reports.List)
	group.POST("", reports.CreateFromUpload)
	group.POST("/query", reports.CreateFromQuery)
	group.GET("/:id", reports.Get)
	group.GET("/:id/files/*name", reports.File)
	return router
}

// requestLogger logs one line per request through the application logger
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
