package routes

import (
	"codearena/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterProfileRoutes(protected *gin.RouterGroup, profile *controllers.ProfileController) {
	protected.GET("/user/profile", profile.GetProfile)
	protected.PUT("/user/profile", profile.UpdateProfile)
}
