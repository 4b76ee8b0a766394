package router

import (
	"github.com/gin-gonic/gin"

	"idekassen.app/intake/internal/http/handler"
	"idekassen.app/intake/internal/http/middleware"
	"idekassen.app/intake/internal/service"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler, auth service.AuthService) {
	rg.GET("/login", h.Login)
	rg.GET("/callback", h.Callback)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", middleware.RequireAuth(auth), h.Me)
}
