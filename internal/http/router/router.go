package router

import (
	"github.com/gin-gonic/gin"

	"idekassen.app/intake/internal/http/handler"
	"idekassen.app/intake/internal/http/middleware"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/storage"
)

type RouterConfig struct {
	AppURL       string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, files storage.Client, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(services.Auth(), cfg.AppURL, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler, services.Auth())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAuth(services.Auth()))
	{
		suggestionHandler := handler.NewSuggestionHandler(services.Conversations(), files)
		SuggestionRouter(v1.Group("/suggestions"), suggestionHandler)

		adminHandler := handler.NewAdminHandler(services.Reviews())
		AdminRouter(v1.Group("/admin"), adminHandler)
	}
}
