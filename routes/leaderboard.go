package routes

import (
	"codearena/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterLeaderboardRoutes(protected *gin.RouterGroup, leaderboard *controllers.LeaderboardController) {
	protected.GET("/leaderboard", leaderboard.GetLeaderboard)
}
