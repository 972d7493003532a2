package routes

import (
	"codearena/controllers"
	"codearena/middlewares"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// RegisterProgressRoutes exposes activity reporting to the judge and admins.
// The user credited is the one named in :id, never the caller.
func RegisterProgressRoutes(protected *gin.RouterGroup, progress *controllers.ProgressController, enforcer *casbin.Enforcer, users middlewares.RoleSource) {
	group := protected.Group("/progress/users/:id")
	group.Use(middlewares.RBACMiddleware(enforcer, users, middlewares.ResourceProgress, middlewares.ActionReport))
	group.POST("/solve", progress.RecordSolve)
	group.POST("/xp", progress.AddXP)
	group.POST("/fast-solve", progress.FastSolve)
	group.POST("/judge-hero", progress.JudgeHero)
	group.POST("/mentor", progress.Mentor)
	group.POST("/collaboration", progress.Collaboration)
	group.POST("/shared-solution", progress.SharedSolution)
}
