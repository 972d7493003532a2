package routes

import (
	"codearena/controllers"
	"codearena/middlewares"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(protected *gin.RouterGroup, admin *controllers.AdminController, enforcer *casbin.Enforcer, users middlewares.RoleSource) {
	group := protected.Group("/admin/users")
	group.POST("/:id/contest-top10",
		middlewares.RBACMiddleware(enforcer, users, middlewares.ResourceContest, middlewares.ActionAward),
		admin.MarkContestTop10)
	group.POST("/:id/recompute-badges",
		middlewares.RBACMiddleware(enforcer, users, middlewares.ResourceUser, middlewares.ActionRecompute),
		admin.RecomputeBadges)
}
