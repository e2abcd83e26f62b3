package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"issuehub/database"
	"issuehub/internal/config"
	"issuehub/internal/httpapi/handler"
	"issuehub/internal/httpapi/middleware"
	"issuehub/internal/httpapi/repository"
	"issuehub/internal/httpapi/service"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	pushSubRepo := repository.NewPushSubscriptionRepository(db)
	adminLogRepo := repository.NewAdminLogRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	pushSvc := service.NewPushService(pushSubRepo, cfg, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, pushSvc, logger)
	issueSvc := service.NewIssueService(issueRepo, userRepo, notificationSvc, logger)
	meetingSvc := service.NewMeetingService(meetingRepo, userRepo, notificationSvc, logger)
	commentSvc := service.NewCommentService(commentRepo, issueRepo, userRepo, notificationSvc, logger)
	memberSvc := service.NewMemberService(userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	issueHandler := handler.NewIssueHandler(issueSvc, commentSvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc)
	memberHandler := handler.NewMemberHandler(memberSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	pushHandler := handler.NewPushHandler(pushSvc)
	adminHandler := handler.NewAdminHandler(adminLogRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public auth endpoints; login carries a per-IP rate limit.
	api := r.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", middleware.LoginRateLimit(rate.Limit(1), 5), authHandler.Login)
	api.POST("/refresh", authHandler.RefreshToken)
	api.POST("/revoke", authHandler.RevokeToken)

	// Authenticated application endpoints.
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.AdminLog(adminLogRepo, logger))
	issueHandler.RegisterRoutes(protected.Group("/issues"))
	meetingHandler.RegisterRoutes(protected.Group("/meetings"))
	memberHandler.RegisterRoutes(protected.Group("/members"))

	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(authSvc))
	notificationHandler.RegisterRoutes(notifications)

	pushGroup := r.Group("/push")
	pushGroup.Use(middleware.AuthMiddleware(authSvc))
	pushHandler.RegisterRoutes(pushGroup)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc), middleware.RequireAdmin())
	adminHandler.RegisterRoutes(admin)
	memberHandler.RegisterAdminRoutes(admin.Group("/members"))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
