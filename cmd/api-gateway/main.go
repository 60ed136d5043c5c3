package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/crata-labs/crata-api/api/swagger"
	"github.com/crata-labs/crata-api/internal/handler"
	"github.com/crata-labs/crata-api/internal/middleware"
	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/repository"
	"github.com/crata-labs/crata-api/internal/service"
	"github.com/crata-labs/crata-api/pkg/cache"
	"github.com/crata-labs/crata-api/pkg/config"
	"github.com/crata-labs/crata-api/pkg/database"
	"github.com/crata-labs/crata-api/pkg/jobs"
	"github.com/crata-labs/crata-api/pkg/logger"
	corsmiddleware "github.com/crata-labs/crata-api/pkg/middleware/cors"
	reqidmiddleware "github.com/crata-labs/crata-api/pkg/middleware/requestid"
	"github.com/crata-labs/crata-api/pkg/storage"
)

// @title Crata API
// @version 1.0.0
// @description Assessment delivery, chart derivation and group analytics service
// @BasePath /api/v1
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	manseRepo := repository.NewManseRepository(db)
	resultRepo := repository.NewResultRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)

	manseSvc := service.NewManseService(manseRepo, validate, logr, service.ManseSeedConfig{
		SeedDir:   cfg.Manse.SeedDir,
		BatchSize: cfg.Manse.SeedBatchSize,
	})
	seedRunner := jobs.NewRunner("manse-seed", manseSvc.ProcessSeedJob, jobs.Options{
		Workers:     cfg.Manse.WorkerConcurrency,
		MaxAttempts: cfg.Manse.WorkerRetries,
		Logger:      logr,
	})
	seedRunner.Start(context.Background())
	defer seedRunner.Shutdown()
	manseSvc.AttachQueue(seedRunner)

	testRunSvc := service.NewTestRunService(versionRepo, ticketRepo, resultRepo, manseSvc.Deriver(), cacheSvc, validate, logr)
	analyticsSvc := service.NewGroupAnalyticsService(groupRepo, ticketRepo, resultRepo, cacheSvc, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewReportStore(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewDownloadSigner(cfg.JWT.Secret, cfg.Reports.ResultTTL)
		reportSvc = service.NewReportService(analyticsSvc, store, signer, service.ReportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.ResultTTL,
		}, logr, nil, nil)

		// Expired report files are swept in the background.
		go func(svc *service.ReportService) {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				if removed, err := svc.Cleanup(); err != nil {
					logr.Warn("report sweep failed", zap.Error(err))
				} else if removed > 0 {
					logr.Info("swept expired reports", zap.Int("removed", removed))
				}
			}
		}(reportSvc)
	}

	// Handlers.
	manseHandler := handler.NewManseHandler(manseSvc)
	testRunHandler := handler.NewTestRunHandler(testRunSvc)
	analyticsHandler := handler.NewGroupAnalyticsHandler(analyticsSvc, reportSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		api.POST("/manse/calc", manseHandler.Calc)
		api.GET("/tests/:slug/run", testRunHandler.Run)
		api.POST("/tests/:slug/results", testRunHandler.Submit)

		authed := api.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.POST("/manse/seed", middleware.RequireRoles(models.RoleAdmin), manseHandler.Seed)

			groups := authed.Group("/groups/:groupId")
			groups.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
			{
				groups.GET("/analytics", analyticsHandler.Analytics)
				groups.GET("/members", analyticsHandler.Members)
				groups.GET("/sub-groups", analyticsHandler.SubGroups)
				groups.GET("/sub-groups/comparison", analyticsHandler.Comparison)
				groups.POST("/report", analyticsHandler.Report)
			}

			authed.GET("/analytics/system", middleware.RequireRoles(models.RoleAdmin), analyticsHandler.SystemMetrics)
		}

		api.GET("/reports/download/:token", analyticsHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
