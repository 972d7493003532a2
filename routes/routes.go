package routes

import (
	"net/http"

	"codearena/controllers"
	"codearena/middlewares"
	"codearena/services"
	"codearena/websocket"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Users        services.UserStore
	Rankings     services.RankingStore
	Credentials  *services.CredentialService
	Profiles     *services.ProfileService
	Progress     *services.ProgressionService
	Hub          *websocket.GamificationHub
	Enforcer     *casbin.Enforcer
	Throttle     controllers.LoginThrottle
	SecureCookie bool
}

// Setup registers every route on router.
func Setup(router *gin.Engine, d Deps) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Hub != nil {
		router.GET("/ws/gamification", d.Hub.Handler(d.Credentials))
	}

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(middlewares.AuthMiddleware(d.Credentials))

	RegisterAuthRoutes(api, protected, controllers.NewAuthController(d.Credentials, d.Profiles, d.Throttle, d.SecureCookie))
	RegisterProfileRoutes(protected, controllers.NewProfileController(d.Profiles))
	if d.Rankings != nil {
		RegisterLeaderboardRoutes(protected, controllers.NewLeaderboardController(d.Rankings))
	}
	if d.Enforcer != nil {
		RegisterProgressRoutes(protected, controllers.NewProgressController(d.Progress), d.Enforcer, d.Users)
		RegisterAdminRoutes(protected, controllers.NewAdminController(d.Progress), d.Enforcer, d.Users)
	}
}
