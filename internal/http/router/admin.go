package router

import (
	"github.com/gin-gonic/gin"

	"idekassen.app/intake/internal/http/handler"
	"idekassen.app/intake/internal/http/middleware"
)

func AdminRouter(rg *gin.RouterGroup, h *handler.AdminHandler) {
	rg.Use(middleware.RequireAdmin())

	rg.GET("/suggestions", h.List)
	rg.GET("/suggestions/:id", h.Get)
	rg.POST("/suggestions/:id/decision", h.Decide)
	rg.POST("/suggestions/:id/archive", h.Archive)
	rg.PUT("/suggestions/:id", h.Edit)
	rg.POST("/suggestions/:id/prd", h.RetryPRD)
	rg.GET("/suggestions/:id/prd.md", h.ExportPRD)
}
