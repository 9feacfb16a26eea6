package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/classtrack-api/api/swagger"
	"github.com/noah-isme/classtrack-api/internal/handler"
	"github.com/noah-isme/classtrack-api/internal/middleware"
	"github.com/noah-isme/classtrack-api/internal/repository"
	"github.com/noah-isme/classtrack-api/internal/service"
	"github.com/noah-isme/classtrack-api/pkg/cache"
	"github.com/noah-isme/classtrack-api/pkg/config"
	"github.com/noah-isme/classtrack-api/pkg/database"
	"github.com/noah-isme/classtrack-api/pkg/export"
	"github.com/noah-isme/classtrack-api/pkg/jobs"
	"github.com/noah-isme/classtrack-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/classtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classtrack-api/pkg/middleware/requestid"
	"github.com/noah-isme/classtrack-api/pkg/storage"
)

// @title ClassTrack API
// @version 0.1.0
// @description Grading and summary aggregation service for school conduct and academic tracking
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	ctx := context.Background()

	schoolYearRepo := repository.NewSchoolYearRepository(db)
	weekRepo := repository.NewWeekRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	violationTypeRepo := repository.NewViolationTypeRepository(db)
	dailyScoreRepo := repository.NewDailyScoreRepository(db)
	disciplineRepo := repository.NewDisciplineRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	violationRepo := repository.NewViolationRepository(db)
	weeklySummaryRepo := repository.NewWeeklySummaryRepository(db)
	monthlySummaryRepo := repository.NewMonthlySummaryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	weeklySummarySvc := service.NewWeeklySummaryService(
		weeklySummaryRepo,
		disciplineRepo,
		academicRepo,
		violationRepo,
		weekRepo,
		schoolYearRepo,
		cacheRepo,
		cfg.Summaries,
		logr,
	)
	monthlySummarySvc := service.NewMonthlySummaryService(
		monthlySummaryRepo,
		weeklySummaryRepo,
		weekRepo,
		violationRepo,
		schoolYearRepo,
		logr,
	)

	schoolYearSvc := service.NewSchoolYearService(schoolYearRepo, weekRepo, validate, logr)
	weekSvc := service.NewWeekService(weekRepo, weeklySummarySvc, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, validate, logr)
	violationTypeSvc := service.NewViolationTypeService(violationTypeRepo, validate, logr)
	dailyScoreSvc := service.NewDailyScoreService(dailyScoreRepo, weekRepo, schoolYearRepo, validate, logr)
	disciplineSvc := service.NewDisciplineService(disciplineRepo, weekRepo, schoolYearRepo, weeklySummarySvc, validate, logr)
	academicSvc := service.NewAcademicService(academicRepo, weekRepo, schoolYearRepo, weeklySummarySvc, validate, logr)
	violationSvc := service.NewViolationService(violationRepo, violationTypeRepo, weekRepo, weeklySummarySvc, validate, logr)

	metricsSvc := service.NewMetricsService()

	handlers := handler.Handlers{
		SchoolYears:      handler.NewSchoolYearHandler(schoolYearSvc),
		Weeks:            handler.NewWeekHandler(weekSvc),
		Classes:          handler.NewClassHandler(classSvc),
		Students:         handler.NewStudentHandler(studentSvc),
		ViolationTypes:   handler.NewViolationTypeHandler(violationTypeSvc),
		DailyScores:      handler.NewDailyScoreHandler(dailyScoreSvc),
		Discipline:       handler.NewDisciplineHandler(disciplineSvc),
		Academic:         handler.NewAcademicHandler(academicSvc),
		Violations:       handler.NewViolationHandler(violationSvc),
		WeeklySummaries:  handler.NewWeeklySummaryHandler(weeklySummarySvc),
		MonthlySummaries: handler.NewMonthlySummaryHandler(monthlySummarySvc),
	}

	if cfg.Reports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportRepo := repository.NewReportRepository(db)

		exporter := service.NewExportService(
			weeklySummaryRepo,
			monthlySummaryRepo,
			violationRepo,
			fileStore,
			signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
			logr,
			export.NewCSVExporter(),
			export.NewPDFExporter(),
		)

		worker := service.NewReportWorker(reportRepo, exporter, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		reportSvc := service.NewReportService(reportRepo, queue, exporter, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)

		handlers.Reports = handler.NewReportHandler(reportSvc)
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, cfg.JWT.Secret, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
