package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "eventflow/docs"
	"eventflow/internal/config"
	"eventflow/internal/database"
	"eventflow/internal/handlers"
	"eventflow/internal/middleware"
	"eventflow/internal/repositories"
	"eventflow/internal/services"
)

// @title           EventFlow Check-In API
// @version         1.0
// @description     Event check-in, ticket policy and swag-claim backend.
// @BasePath        /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.Config{
		Driver:   cfg.Database.Driver,
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database connection established")

	// The change feed rides on Redis pub/sub. The server stays useful
	// without it; only the live dashboard goes quiet.
	var notifier services.Notifier = services.NoopNotifier{}
	feed := services.NewDashboardFeed(cfg.Dashboard.SuppressionWindow)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable, live dashboard feed disabled: %v", err)
	} else {
		notifier = services.NewRedisNotifier(redisClient, cfg.Redis.Channel)
		consumer := services.NewFeedConsumer(redisClient, cfg.Redis.Channel, feed)
		go func() {
			if err := consumer.Run(context.Background()); err != nil && err != context.Canceled {
				log.Printf("Change-feed consumer stopped: %v", err)
			}
		}()
	}
	cancel()

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 1 day; staff log in per event day anyway
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Repositories
	attendeeRepo := repositories.NewAttendeeRepository(db.DB)
	policyRepo := repositories.NewPolicyRepository(db.DB)
	staffRepo := repositories.NewStaffRepository(db.DB)

	// Services
	policyService := services.NewPolicyService(policyRepo, attendeeRepo)
	swagService := services.NewSwagService(attendeeRepo, []byte(cfg.Swag.SigningKey), cfg.Swag.TokenTTL, cfg.Swag.ExemptTypes, notifier)
	checkinService := services.NewCheckInService(attendeeRepo, policyService, swagService, notifier)
	importService := services.NewImportService(attendeeRepo)
	authService := services.NewAuthService(staffRepo)

	// Handlers
	checkinHandler := handlers.NewCheckInHandler(checkinService, cfg.Server.BaseURL)
	swagHandler := handlers.NewSwagHandler(swagService, feed)
	adminHandler := handlers.NewAdminHandler(checkinService, swagService, policyService, importService, feed)
	authHandler := handlers.NewAuthHandler(authService, sessionStore)
	dashboardHandler := handlers.NewDashboardHandler(feed)

	authMiddleware := middleware.NewAuthMiddleware(authService, sessionStore)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		api.POST("/checkin", checkinHandler.CheckIn)

		// The claim link is opened straight from the QR code, so both
		// verbs land on the same transition.
		api.GET("/swag/:token", swagHandler.Claim)
		api.POST("/swag/:token", swagHandler.Claim)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authMiddleware.RequireStaff(), authHandler.Me)
		}

		admin := api.Group("/admin", authMiddleware.RequireStaff())
		{
			admin.GET("/attendees", adminHandler.ListAttendees)
			admin.GET("/attendees/:id", adminHandler.GetAttendee)
			admin.PATCH("/attendees/:id", adminHandler.UpdateAttendee)
			admin.PUT("/attendees/:id/checkin", adminHandler.SetCheckedIn)
			admin.PUT("/attendees/:id/swag", adminHandler.SetSwagReceived)
			admin.POST("/attendees/import", adminHandler.ImportAttendees)
			admin.GET("/policy", adminHandler.GetPolicy)
			admin.PUT("/policy", adminHandler.SetPolicy)
			admin.GET("/stats", adminHandler.Stats)
			admin.POST("/swag/scan", swagHandler.Scan)
			admin.GET("/feed", dashboardHandler.Stream)
		}
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server failed:", err)
	}
}
