package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edumon/forms-api/api/swagger"
	"github.com/edumon/forms-api/internal/handler"
	"github.com/edumon/forms-api/internal/middleware"
	"github.com/edumon/forms-api/internal/models"
	"github.com/edumon/forms-api/internal/repository"
	"github.com/edumon/forms-api/internal/service"
	"github.com/edumon/forms-api/pkg/cache"
	"github.com/edumon/forms-api/pkg/config"
	"github.com/edumon/forms-api/pkg/database"
	"github.com/edumon/forms-api/pkg/logger"
	corsmiddleware "github.com/edumon/forms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edumon/forms-api/pkg/middleware/requestid"
	"github.com/edumon/forms-api/pkg/storage"
)

// @title Edumon Forms API
// @version 1.0.0
// @description Dynamic form schema engine for classroom observation tooling
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
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Render.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Render.CacheTTL, logr, cfg.Render.CacheEnabled)

	templateRepo := repository.NewTemplateRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	translationRepo := repository.NewTranslationRepository(db)

	templateSvc := service.NewTemplateService(templateRepo, submissionRepo, cacheSvc, validate, logr)
	builderSvc := service.NewBuilderService(templateRepo, cacheSvc, validate, logr)
	ingestionSvc := service.NewIngestionService(templateRepo, cacheSvc, metricsSvc, cfg.Forms, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, templateRepo, metricsSvc, validate, logr)
	translationSvc := service.NewTranslationService(translationRepo, cacheSvc, cfg.Render.CacheTTL, logr)
	renderSvc := service.NewRenderService(templateRepo, translationSvc, cacheSvc, cfg.Render.CacheTTL, logr)

	templateHandler := handler.NewTemplateHandler(templateSvc)
	builderHandler := handler.NewBuilderHandler(builderSvc)
	ingestionHandler := handler.NewIngestionHandler(ingestionSvc, cfg.Forms.MaxUploadBytes)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	renderHandler := handler.NewRenderHandler(renderSvc)
	translationHandler := handler.NewTranslationHandler(translationSvc)
	opsHandler := handler.NewOpsHandler(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		store, err := storage.NewArtifactStore(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewDownloadSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(templateRepo, submissionRepo, store, signer, service.ExportConfig{
			APIPrefix:   cfg.APIPrefix,
			ArtifactTTL: cfg.Exports.SignedURLTTL,
			Workers:     cfg.Exports.WorkerConcurrency,
			MaxRetries:  cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
		exportHandler = handler.NewExportHandler(exportSvc)
	}

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
		if err := db.PingContext(c.Request.Context()); err != nil {
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

	authed := api.Group("")
	authed.Use(middleware.JWT(cfg.JWT.Secret))

	editors := authed.Group("")
	editors.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))

	reviewers := authed.Group("")
	reviewers.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleObserver))

	public := api.Group("")
	public.Use(middleware.OptionalJWT(cfg.JWT.Secret))

	authed.GET("/forms", templateHandler.List)
	authed.GET("/forms/:id", templateHandler.Get)
	editors.POST("/forms", templateHandler.Create)
	editors.PUT("/forms/:id", templateHandler.Update)
	editors.DELETE("/forms/:id", templateHandler.Delete)
	editors.POST("/forms/:id/publish", templateHandler.Publish)
	editors.POST("/forms/:id/archive", templateHandler.Archive)
	editors.POST("/forms/:id/duplicate", templateHandler.Duplicate)

	editors.POST("/forms/:id/sections", builderHandler.AddSection)
	editors.PUT("/forms/:id/sections/:sectionId", builderHandler.UpdateSection)
	editors.DELETE("/forms/:id/sections/:sectionId", builderHandler.DeleteSection)
	editors.POST("/forms/:id/fields", builderHandler.AddField)
	editors.PUT("/forms/:id/fields/:fieldId", builderHandler.UpdateField)
	editors.DELETE("/forms/:id/fields/:fieldId", builderHandler.DeleteField)
	editors.POST("/forms/:id/fields/:fieldId/reorder", builderHandler.ReorderField)
	editors.POST("/forms/:id/fields/:fieldId/options", builderHandler.AddOption)
	editors.DELETE("/forms/:id/fields/:fieldId/options/:value", builderHandler.DeleteOption)

	editors.POST("/forms/ingest", ingestionHandler.IngestRows)
	editors.POST("/forms/ingest/csv", ingestionHandler.UploadCSV)

	public.GET("/forms/:id/render", renderHandler.Render)
	public.POST("/forms/:id/render", renderHandler.Preview)
	public.POST("/forms/:id/submissions", submissionHandler.Submit)

	reviewers.GET("/forms/:id/submissions", submissionHandler.List)
	reviewers.GET("/submissions/:id", submissionHandler.Get)
	reviewers.POST("/submissions/:id/approve", submissionHandler.Approve)
	reviewers.POST("/submissions/:id/reject", submissionHandler.Reject)

	public.GET("/translations/:locale", translationHandler.Dictionary)
	editors.PUT("/translations", translationHandler.Upsert)
	editors.PUT("/translations/bulk", translationHandler.BulkUpsert)

	if exportHandler != nil {
		editors.POST("/forms/:id/exports", exportHandler.Create)
		authed.GET("/exports/:jobId", exportHandler.Status)
		api.GET("/exports/download/:token", exportHandler.Download)
		editors.POST("/exports/cleanup", exportHandler.Cleanup)
	}

	editors.GET("/ops/metrics", opsHandler.Metrics)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
