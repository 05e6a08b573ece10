package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focussync/internal/handler"
	"focussync/internal/middleware"
)

func New(
	tokens middleware.TokenParser,
	authHandler *handler.AuthHandler,
	timeTrackingHandler *handler.TimeTrackingHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.Auth(tokens), authHandler.Me)

	tracking := api.Group("/time-tracking")
	tracking.Use(middleware.Auth(tokens))
	tracking.POST("/start", timeTrackingHandler.Start)
	tracking.POST("/stop", timeTrackingHandler.Stop)
	tracking.POST("/pause", timeTrackingHandler.Pause)
	tracking.POST("/resume", timeTrackingHandler.Resume)
	tracking.POST("/cancel", timeTrackingHandler.Cancel)
	tracking.GET("/active", timeTrackingHandler.GetActive)
	tracking.GET("/stats", timeTrackingHandler.GetStats)
	tracking.GET("/history", timeTrackingHandler.GetHistory)

	return engine
}
