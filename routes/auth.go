package routes

import (
	"codearena/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(public, protected *gin.RouterGroup, auth *controllers.AuthController) {
	public.POST("/auth/signup", auth.SignUp)
	public.POST("/auth/login", auth.Login)
	public.POST("/auth/logout", auth.Logout)
	public.POST("/auth/forgot-password", auth.ForgotPassword)
	public.POST("/auth/reset-password", auth.ResetPassword)

	protected.GET("/auth/me", auth.Me)
	protected.POST("/auth/change-password", auth.ChangePassword)
}
