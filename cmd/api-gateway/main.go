package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/avolkov/cert-registry-api/api/swagger"
	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/handler"
	"github.com/avolkov/cert-registry-api/internal/middleware"
	"github.com/avolkov/cert-registry-api/internal/render"
	"github.com/avolkov/cert-registry-api/internal/repository"
	"github.com/avolkov/cert-registry-api/internal/service"
	"github.com/avolkov/cert-registry-api/pkg/cache"
	"github.com/avolkov/cert-registry-api/pkg/config"
	"github.com/avolkov/cert-registry-api/pkg/database"
	"github.com/avolkov/cert-registry-api/pkg/logger"
	corsmiddleware "github.com/avolkov/cert-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/avolkov/cert-registry-api/pkg/middleware/requestid"
)

// @title Certificate Registry API
// @version 1.0.0
// @description Employee certificate registry with exam workflow and HR administration
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repository.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to ensure schema", zap.Error(err))
	}

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	dir := directory.Default()
	certRepo := repository.NewCertificateRepository(db, cfg.Registry.DefaultModule)
	profileRepo := repository.NewProfileRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(dir, profileRepo, cfg.JWT)
	profileService := service.NewProfileService(dir, profileRepo, cfg.Registry.DefaultModule, logr)
	certService := service.NewCertificateService(certRepo, profileRepo, cacheRepo, dir, cfg.Registry, logr)
	renderer := render.NewRenderer(cfg.Render, cfg.Registry.ShareBaseURL)

	if err := profileService.EnsureSeeded(ctx); err != nil {
		logr.Fatal("failed to seed profiles", zap.Error(err))
	}

	authHandler := handler.NewAuthHandler(authService, profileService)
	userHandler := handler.NewUserHandler(profileService)
	profileHandler := handler.NewProfileHandler(profileService)
	certHandler := handler.NewCertificateHandler(certService, metricsService)
	renderHandler := handler.NewRenderHandler(certService, renderer)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metricsService.Registry(), promhttp.HandlerOpts{})))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/users", authHandler.LoginUsers)
		api.GET("/public/certificates/:id/status", certHandler.PublicStatus)

		authed := api.Group("", middleware.Auth(authService, profileService))
		{
			authed.GET("/users", userHandler.List)
			authed.GET("/profile/me", profileHandler.Me)
			authed.PUT("/profile/me", profileHandler.Update)

			certs := authed.Group("/certificates")
			{
				certs.POST("", certHandler.Create)
				certs.GET("/my", certHandler.ListMine)
				certs.GET("/exam-requests", certHandler.ExamRequests)
				certs.GET("/team", certHandler.Team)
				certs.GET("/:id", certHandler.Get)
				certs.POST("/:id/exam", certHandler.SubmitExam)
				certs.GET("/:id/image", renderHandler.Image)
				certs.GET("/:id/pdf", renderHandler.PDF)
				certs.GET("/:id/qr", renderHandler.QR)

				certs.PUT("/:id", certHandler.Update)
				certs.DELETE("/:id", certHandler.Delete)
				certs.POST("/:id/revoke", certHandler.Revoke)
				certs.POST("/:id/unrevoke", certHandler.Unrevoke)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
