package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social-style-service/internal/app"
)

// NewRouter wires the REST API and the live view socket onto one gin engine.
func NewRouter(service *app.StyleService, publicURL string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	api := NewAPIHandler(service, publicURL)
	ws := NewWSHandler(service)

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	group := router.Group("/api")
	{
		group.GET("/questionnaire", api.Questionnaire)
		group.GET("/submissions/:id", api.GetSubmission)

		sessions := group.Group("/sessions")
		{
			sessions.POST("", api.CreateSession)
			sessions.GET("/:code", api.GetSession)
			sessions.PATCH("/:code/flags", api.UpdateFlags)
			sessions.POST("/:code/submissions", api.Submit)
			sessions.GET("/:code/view", api.View)
			sessions.GET("/:code/styles/:style", api.StyleView)
			sessions.GET("/:code/qr.png", api.QRCode)
		}
	}
	router.GET("/ws/:code", ws.Handle)
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
