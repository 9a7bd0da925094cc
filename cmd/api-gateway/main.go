package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/chamada-api/api/swagger"
	"github.com/noah-isme/chamada-api/internal/handler"
	internalmiddleware "github.com/noah-isme/chamada-api/internal/middleware"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	"github.com/noah-isme/chamada-api/internal/service"
	"github.com/noah-isme/chamada-api/internal/stats"
	"github.com/noah-isme/chamada-api/pkg/cache"
	"github.com/noah-isme/chamada-api/pkg/config"
	"github.com/noah-isme/chamada-api/pkg/database"
	"github.com/noah-isme/chamada-api/pkg/jobs"
	"github.com/noah-isme/chamada-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/chamada-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/chamada-api/pkg/middleware/requestid"
	"github.com/noah-isme/chamada-api/pkg/storage"
)

// @title Chamada API
// @version 1.0.0
// @description Attendance recording and statistics for school roll calls
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	thresholds := stats.Thresholds{
		RiskAbsences:     cfg.Stats.RiskAbsences,
		CriticalAbsences: cfg.Stats.CriticalAbsences,
		TrendMargin:      cfg.Stats.TrendMargin,
		AbsenteeMin:      cfg.Stats.AbsenteeMin,
	}.WithDefaults()
	location := cfg.Stats.Location()

	loader := service.NewSnapshotLoader(studentRepo, classRepo, attendanceRepo, metrics)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Loader: loader,
		Cache:  cacheSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:   cfg.Dashboard.CacheTTL,
			Location:   location,
			Thresholds: thresholds,
		},
	})
	statisticsSvc := service.NewStatisticsService(loader, cacheSvc, service.StatisticsServiceConfig{
		CacheTTL:   cfg.Dashboard.CacheTTL,
		Location:   location,
		Thresholds: thresholds,
	}, logr)

	var warmupSvc *service.WarmupService
	if cfg.Warmup.Enabled {
		queue := jobs.NewQueue("stats-warmup", service.WarmupHandler(dashboardSvc), jobs.QueueConfig{
			Workers:    cfg.Warmup.Workers,
			MaxRetries: cfg.Warmup.Retries,
			Logger:     logr,
			OnDone: func(_ jobs.Job, err error) {
				metrics.RecordWarmup(err)
			},
		})
		queue.Start(ctx)
		defer queue.Stop()
		warmupSvc = service.NewWarmupService(cacheSvc, queue, dashboardSvc, logr)
	} else {
		warmupSvc = service.NewWarmupService(cacheSvc, nil, nil, logr)
	}

	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, warmupSvc, validator.New(), logr)
	certificateSvc := service.NewCertificateService(certificateRepo, studentRepo, validator.New(), logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Classes:      classRepo,
		Students:     studentRepo,
		Attendance:   attendanceRepo,
		Certificates: certificateRepo,
		Storage:      exportStorage,
		Signer:       storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		Metrics:      metrics,
		Logger:       logr,
		Config:       service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
	})
	go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, readinessChecks(db, cacheRepo))
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authSvc, routeHandlers{
		dashboard:    handler.NewDashboardHandler(dashboardSvc),
		statistics:   handler.NewStatisticsHandler(statisticsSvc),
		attendance:   handler.NewAttendanceHandler(attendanceSvc),
		certificates: handler.NewCertificateHandler(certificateSvc),
		exports:      handler.NewExportHandler(exportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type routeHandlers struct {
	dashboard    *handler.DashboardHandler
	statistics   *handler.StatisticsHandler
	attendance   *handler.AttendanceHandler
	certificates *handler.CertificateHandler
	exports      *handler.ExportHandler
}

func registerRoutes(api *gin.RouterGroup, auth *service.AuthService, h routeHandlers) {
	api.GET("/exports/download/:token", h.exports.Download)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(auth))
	staff := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleMonitor)

	secured.GET("/dashboard/stats", staff, h.dashboard.Stats)

	statistics := secured.Group("/statistics", staff)
	statistics.GET("/classes", h.statistics.Classes)
	statistics.GET("/absentees", h.statistics.Absentees)
	statistics.GET("/weekly-risk", h.statistics.WeeklyRisk)

	attendance := secured.Group("/attendance")
	attendance.GET("", staff, h.attendance.List)
	attendance.POST("", staff, h.attendance.Record)
	attendance.GET("/roll-call", staff, h.attendance.RollCall)
	attendance.POST("/roll-call", staff, h.attendance.RecordRollCall)
	attendance.PATCH("/:id", staff, h.attendance.UpdateStatus)
	attendance.POST("/:id/justification", staff, h.attendance.Justify)
	attendance.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), h.attendance.Delete)

	secured.GET("/students/:id/certificates", staff, h.certificates.List)
	secured.POST("/students/:id/certificates", staff, h.certificates.Create)
	secured.PATCH("/certificates/:id", staff, h.certificates.Update)

	secured.POST("/exports/classes/:id", staff, h.exports.ClassReport)
}

func readinessChecks(db *sqlx.DB, cacheRepo *repository.CacheRepository) map[string]handler.ReadinessCheck {
	return map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"cache":    cacheRepo.Ping,
	}
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := exports.Cleanup(ctx); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}
