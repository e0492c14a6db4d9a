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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-results-api/api/swagger"
	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/handler"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	"github.com/noah-isme/sma-results-api/internal/service"
	"github.com/noah-isme/sma-results-api/pkg/cache"
	"github.com/noah-isme/sma-results-api/pkg/config"
	"github.com/noah-isme/sma-results-api/pkg/database"
	"github.com/noah-isme/sma-results-api/pkg/export"
	"github.com/noah-isme/sma-results-api/pkg/jobs"
	"github.com/noah-isme/sma-results-api/pkg/logger"
	"github.com/noah-isme/sma-results-api/pkg/notify"
	"github.com/noah-isme/sma-results-api/pkg/storage"
)

// @title SMA Results API
// @version 1.0.0
// @description Result computation, ranking and report card lifecycle for schools
// @BasePath /api/v1
// @schemes http https
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		if cfg.Identifier.CounterBackend == config.CounterBackendRedis {
			logr.Sugar().Fatalw("redis is required by the identifier counter", "error", err)
		}
		logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	resultRepo := repository.NewResultRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	termRepo := repository.NewTermRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var sequence interface {
		Next(ctx context.Context, schoolID, scope string) (int64, error)
	}
	if cfg.Identifier.CounterBackend == config.CounterBackendRedis {
		sequence = repository.NewRedisSequence(redisClient, studentRepo.CountBySchool)
	} else {
		sequence = repository.NewSequenceRepository(db, studentRepo.CountBySchool)
	}

	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	downloadBase := cfg.Reports.PublicBaseURL + cfg.APIPrefix + "/report-cards/download"

	policy := grading.Policy{
		PromotionThreshold:    cfg.Grading.PromotionThreshold,
		PromoteWhenNoSubjects: cfg.Grading.PromoteWhenNoSubjects,
		TieBreak:              models.TieBreakPolicy(cfg.Grading.RankingTieBreak),
	}
	configs := service.NewGradingConfigService(schoolRepo, policy, cfg.Grading.DefaultPassMark)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && redisClient != nil)

	var sender notify.Sender = notify.NewLogSender(logr)
	if cfg.Notify.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(cfg.Notify.SendGridAPIKey, cfg.Notify.AppName, cfg.Notify.FromEmail)
	}
	notifyWorker := service.NewNotificationWorker(sender, metrics, logr)
	notifyQueue := jobs.NewQueue("notifications", notifyWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Notify.WorkerConcurrency,
		MaxRetries: cfg.Notify.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnGiveUp:   notifyWorker.GiveUp,
		Logger:     logr,
	})
	notifyQueue.Start(ctx)
	defer notifyQueue.Stop()
	notifications := service.NewNotificationService(notifyQueue, cfg.Notify.Enabled, logr)

	resultSvc := service.NewResultService(resultRepo, studentRepo, configs, cacheSvc, metrics, nil, logr,
		service.ResultServiceConfig{StatsTTL: cfg.Stats.CacheTTL})
	rankingSvc := service.NewRankingService(resultRepo, configs, cacheSvc, metrics, logr)
	reportCards := service.NewReportCardService(resultRepo, schoolRepo, studentRepo, export.NewPDFExporter(), files, signer,
		notifications, cacheSvc, metrics, logr, service.ReportCardConfig{DownloadBaseURL: downloadBase})
	reportQueue := jobs.NewQueue("report-cards", reportCards.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		OnGiveUp: func(job jobs.Job, err error) {
			logr.Error("report card generation abandoned", zap.String("result_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
		},
		Logger: logr,
	})
	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	reportCards.SetQueue(reportQueue)

	exportSvc := service.NewExportService(resultRepo, studentRepo, files, signer, service.ExportConfig{
		DownloadBaseURL: downloadBase,
		Retention:       cfg.Reports.Retention,
		CleanupInterval: cfg.Reports.CleanupInterval,
	}, logr, export.NewCSVExporter(true), export.NewPDFExporter())
	exportSvc.StartCleanup(ctx)

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Expiration: cfg.JWT.Expiration})

	router := newRouter(cfg, logr, metrics, tokens, routeHandlers{
		results:     handler.NewResultHandler(resultSvc),
		reportCards: handler.NewReportCardHandler(reportCards),
		classes:     handler.NewClassHandler(rankingSvc, exportSvc, reportCards),
		schools:     handler.NewSchoolHandler(service.NewSchoolService(schoolRepo, termRepo, metrics, nil, logr)),
		terms:       handler.NewTermHandler(service.NewTermService(termRepo, metrics, nil, logr)),
		students:    handler.NewStudentHandler(service.NewStudentService(studentRepo, sequence, cfg.Identifier.Prefix, metrics, nil, logr)),
		health: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"postgres": handler.PingFunc(db.PingContext),
			"redis":    cacheRepo,
		}).WithQueues(map[string]handler.QueueDepth{
			"report-cards":  reportQueue,
			"notifications": notifyQueue,
		}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
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
