package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/aula-admin-api/api/swagger"
	"github.com/noah-isme/aula-admin-api/internal/handler"
	"github.com/noah-isme/aula-admin-api/internal/middleware"
	"github.com/noah-isme/aula-admin-api/internal/repository"
	"github.com/noah-isme/aula-admin-api/internal/service"
	"github.com/noah-isme/aula-admin-api/pkg/cache"
	"github.com/noah-isme/aula-admin-api/pkg/config"
	"github.com/noah-isme/aula-admin-api/pkg/credentials"
	"github.com/noah-isme/aula-admin-api/pkg/database"
	"github.com/noah-isme/aula-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/aula-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/aula-admin-api/pkg/middleware/requestid"
)

// @title Aula Admin API
// @version 0.1.0
// @description Admin backend for commissions, enrollments and account provisioning
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	uow := repository.NewSQLUnitOfWork(db)
	secrets := credentials.NewGenerator(cfg.Credentials.BcryptCost)

	commissionSvc := service.NewCommissionService(uow, cacheSvc, cfg.Cache.TTL, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(uow, cacheSvc, nil, logr)
	provisioningSvc := service.NewProvisioningService(uow, secrets, cacheSvc, nil, logr)
	teacherSvc := service.NewTeacherService(uow, secrets, nil, logr)
	studentSvc := service.NewStudentService(uow, nil, logr)
	credentialsSvc := service.NewCredentialsService(uow, logr)

	commissionHandler := handler.NewCommissionHandler(commissionSvc, enrollmentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, metrics)
	provisioningHandler := handler.NewProvisioningHandler(provisioningSvc, metrics)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, metrics)
	studentHandler := handler.NewStudentHandler(studentSvc)
	credentialsHandler := handler.NewCredentialsHandler(credentialsSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	audience := ""
	if len(cfg.JWT.Audience) > 0 {
		audience = cfg.JWT.Audience[0]
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret, cfg.JWT.Issuer, audience))
	api.Use(middleware.RequireAdmin())
	{
		api.GET("/commissions", commissionHandler.List)
		api.POST("/commissions", commissionHandler.Create)
		api.GET("/commissions/:id", commissionHandler.Get)
		api.PATCH("/commissions/:id", commissionHandler.Update)
		api.DELETE("/commissions/:id", commissionHandler.Deactivate)
		api.GET("/commissions/:id/roster", commissionHandler.Roster)

		api.GET("/enrollments", enrollmentHandler.List)
		api.POST("/enrollments", enrollmentHandler.Create)
		api.PUT("/enrollments/:id/state", enrollmentHandler.UpdateState)
		api.DELETE("/enrollments/:id", enrollmentHandler.Remove)

		api.POST("/provisioning/students", provisioningHandler.CreateStudents)
		api.POST("/provisioning/enroll", provisioningHandler.CreateStudentAndEnroll)

		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)

		api.GET("/teachers", teacherHandler.List)
		api.POST("/teachers", teacherHandler.Create)
		api.GET("/teachers/:id", teacherHandler.Get)

		api.GET("/credentials/pending", credentialsHandler.List)
		api.GET("/credentials/pending/export", credentialsHandler.ExportPDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
