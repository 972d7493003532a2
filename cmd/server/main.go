package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"codearena/config"
	"codearena/controllers"
	"codearena/db"
	"codearena/internal/ratelimit"
	"codearena/middlewares"
	"codearena/routes"
	"codearena/services"
	"codearena/utils"
	"codearena/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "./config/config.prod.yml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	store := db.NewMongoUserStore(db.MongoDatabase)
	if err := store.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	enforcer, err := middlewares.NewMongoEnforcer(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to initialize RBAC: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = ratelimit.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Warning: login throttling disabled: %v", err)
			rdb = nil
		} else {
			log.Println("Connected to Redis")
		}
	}
	throttle := ratelimit.NewLoginLimiter(rdb, cfg.LoginLimit.MaxAttempts, time.Duration(cfg.LoginLimit.WindowSeconds)*time.Second)

	tokens, err := utils.NewJWTManager(cfg.JWT.Secret, utils.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	var mailer utils.Mailer = utils.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = utils.NewSMTPMailer(utils.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			SenderEmail: cfg.SMTP.SenderEmail,
			SenderName:  cfg.SMTP.SenderName,
		})
	}

	hub := websocket.NewGamificationHub()
	progress := services.NewProgressionService(store, store, hub)

	var loginThrottle controllers.LoginThrottle
	if throttle != nil {
		loginThrottle = throttle
	}

	router := setupRouter(cfg)
	routes.Setup(router, routes.Deps{
		Users:        store,
		Rankings:     store,
		Credentials:  services.NewCredentialService(store, progress, tokens, mailer),
		Profiles:     services.NewProfileService(store, progress),
		Progress:     progress,
		Hub:          hub,
		Enforcer:     enforcer,
		Throttle:     loginThrottle,
		SecureCookie: !cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.DisconnectMongoDB(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return router
}
