// Package main runs the booking-page HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openmeet/backend/config"
	"github.com/openmeet/backend/internal/auth"
	"github.com/openmeet/backend/internal/booking"
	"github.com/openmeet/backend/internal/eventtypes"
	"github.com/openmeet/backend/internal/middleware"
	"github.com/openmeet/backend/internal/profiles"
	"github.com/openmeet/backend/internal/redirects"
	"github.com/openmeet/backend/internal/users"
	"github.com/openmeet/backend/pkg/database"
	"github.com/openmeet/backend/pkg/redis"
	"github.com/openmeet/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		// Redirect lookups fall back to the database without redis.
		logger.Warn("redis unavailable, redirect caching disabled", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	redirectCache := redirects.NewCache(rdb, time.Duration(cfg.Booking.RedirectCacheTTL)*time.Second, logger)
	userRedirectRepo := redirects.NewUserRedirectRepository(pool, redirectCache)
	orgRedirectRepo := redirects.NewOrgRedirectRepository(pool, redirectCache)

	userRepo := users.NewRepository(pool)
	profileRepo := profiles.NewRepository(pool)
	eventTypeRepo := eventtypes.NewRepository(pool)

	resolver := booking.NewResolver(userRepo, eventTypeRepo, userRedirectRepo, orgRedirectRepo, cfg.Booking, logger)
	bookingHandler := booking.NewHandler(resolver, logger)
	profileHandler := profiles.NewHandler(profileRepo, userRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public booking page (single user or dynamic group)
	router.GET("/:user", bookingHandler.GetUserPage)

	// Management API (JWT required; profile administration for provisioning tools)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/profiles", middleware.RequireRole("admin"), profileHandler.Create)
		api.PUT("/profiles", middleware.RequireRole("admin"), profileHandler.Upsert)
		api.DELETE("/profiles/:userID/:orgID", middleware.RequireRole("admin"), profileHandler.Delete)
		api.GET("/profiles/up/:upId", profileHandler.GetByUpID)
		api.GET("/users/:id/profiles", profileHandler.ListForUser)
		api.DELETE("/users/:id/profiles", middleware.RequireRole("admin"), profileHandler.DeleteForUser)
		api.GET("/organizations/:id/profiles", profileHandler.ListForOrg)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
