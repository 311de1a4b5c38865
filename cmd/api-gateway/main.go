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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teacher-journal-api/api/swagger"
	"github.com/noah-isme/teacher-journal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/teacher-journal-api/internal/middleware"
	"github.com/noah-isme/teacher-journal-api/internal/repository"
	"github.com/noah-isme/teacher-journal-api/internal/service"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	"github.com/noah-isme/teacher-journal-api/pkg/cache"
	"github.com/noah-isme/teacher-journal-api/pkg/config"
	"github.com/noah-isme/teacher-journal-api/pkg/database"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	"github.com/noah-isme/teacher-journal-api/pkg/export"
	"github.com/noah-isme/teacher-journal-api/pkg/jobs"
	"github.com/noah-isme/teacher-journal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/teacher-journal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teacher-journal-api/pkg/middleware/requestid"
	"github.com/noah-isme/teacher-journal-api/pkg/storage"
)

// @title Teacher Journal API
// @version 1.0.0
// @description Daily classroom journal with summaries, exports, reminders and notes
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type brokerWithTopics interface {
	events.Broker
	Topics() []string
}

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
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, falling back to in-process cache and broker", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Reminders.Location()

	var broker brokerWithTopics = events.NewLocalBroker()
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		broker = events.NewRedisBroker(redisClient, logr.Named("events"))
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && cacheRepo != nil)

	var aiClient ai.Client = ai.NopClient{}
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = ai.NewHTTPClient(ai.HTTPConfig{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
	}
	assistant := service.NewAssistantService(aiClient, metrics, logr.Named("ai"))

	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	recordRepo := repository.NewDailyRecordRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	planRepo := repository.NewLessonPlanRepository(db)
	forumRepo := repository.NewForumRepository(db)
	reportRepo := repository.NewReportRepository(db)

	drafts := service.NewDraftService(classRepo, recordRepo, studentRepo, cacheSvc, broker, metrics, logr.Named("journal"))
	classSvc := service.NewClassService(classRepo, studentRepo, drafts, cacheSvc, broker, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, drafts, cacheSvc, assistant, broker, validate, logr)
	analyticsSvc := service.NewAnalyticsService(classRepo, studentRepo, recordRepo, cacheSvc, metrics, logr.Named("analytics"))
	reminderSvc := service.NewReminderService(reminderRepo, broker, validate, loc, logr)
	noteSvc := service.NewNoteService(noteRepo, assistant, broker, validate, loc, logr)
	planSvc := service.NewLessonPlanService(planRepo, classRepo, assistant, validate, logr)
	forumSvc := service.NewForumService(forumRepo, assistant, validate, logr)
	chatSvc := service.NewChatService(assistant, validate)
	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(
		analyticsSvc, classRepo, studentRepo, assistant, fileStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
		logr.Named("export"), export.NewCSVExporter(), export.NewPDFExporter(),
	)

	reportWorker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, metrics, logr.Named("reports"))
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	reportQueue.Start(ctx)
	defer reportQueue.Stop()

	reportSvc := service.NewReportService(reportRepo, classRepo, studentRepo, reportQueue, exportSvc, metrics, logr.Named("reports"), service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)

	watcher := service.NewReminderWatcher(reminderSvc, broker, broker, cfg.Reminders.PollInterval, logr.Named("reminders"))
	watcher.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Journal:     handler.NewJournalHandler(drafts),
		Classes:     handler.NewClassHandler(classSvc),
		Students:    handler.NewStudentHandler(studentSvc, cfg.Import.MaxFileSizeBytes),
		Analytics:   handler.NewAnalyticsHandler(analyticsSvc),
		Reports:     handler.NewReportHandler(reportSvc),
		Reminders:   handler.NewReminderHandler(reminderSvc),
		Notes:       handler.NewNoteHandler(noteSvc),
		LessonPlans: handler.NewLessonPlanHandler(planSvc),
		Forum:       handler.NewForumHandler(forumSvc),
		Chat:        handler.NewChatHandler(chatSvc),
		Events:      handler.NewEventsHandler(broker, metrics, logr.Named("events")),
		Metrics:     handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient)...),
	}, authSvc, logr)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

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
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client) []handler.ReadinessCheck {
	checks := []handler.ReadinessCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: cache.Healthcheck(redisClient)})
	}
	return checks
}
