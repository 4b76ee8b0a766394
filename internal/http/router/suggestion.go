package router

import (
	"github.com/gin-gonic/gin"

	"idekassen.app/intake/internal/http/handler"
)

func SuggestionRouter(rg *gin.RouterGroup, h *handler.SuggestionHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/turns", h.SubmitTurn)
	rg.POST("/:id/complete", h.Complete)
	rg.POST("/attachments", h.Upload)
}
