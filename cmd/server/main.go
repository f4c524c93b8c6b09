package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tahfidzid/mutqin-backend/internal/config"
	"github.com/tahfidzid/mutqin-backend/internal/database"
	"github.com/tahfidzid/mutqin-backend/internal/handler"
	"github.com/tahfidzid/mutqin-backend/internal/logger"
	"github.com/tahfidzid/mutqin-backend/internal/notifier"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
	"github.com/tahfidzid/mutqin-backend/internal/router"
	"github.com/tahfidzid/mutqin-backend/internal/service"
	"github.com/tahfidzid/mutqin-backend/internal/validator"
	"github.com/tahfidzid/mutqin-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Mutqin Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	programRepo := repository.NewProgramRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	dailyLogRepo := repository.NewDailyLogRepository(pool)
	companionDayRepo := repository.NewCompanionDayRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	programService := service.NewProgramService(programRepo)
	classService := service.NewClassService(classRepo)
	studentService := service.NewStudentService(studentRepo)
	dailyLogService := service.NewDailyLogService(dailyLogRepo)

	// Notifications are enqueued on Redis; the dispatch worker below drains
	// the queue and hands jobs to the delivery transport.
	notifyTransport := notifier.NewRedisQueueTransport(rdb, config.WorkerKey.NotifyDispatchQueue)
	companionsService := service.NewCompanionsService(
		cfg, classRepo, studentRepo, dailyLogRepo, companionDayRepo,
		notifyTransport, rdb, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Program:    handler.NewProgramHandler(programService),
		Class:      handler.NewClassHandler(classService),
		Student:    handler.NewStudentHandler(studentService),
		DailyLog:   handler.NewDailyLogHandler(dailyLogService),
		Companions: handler.NewCompanionsHandler(companionsService),
		WS:         handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	dispatchWorker := worker.NewNotifyDispatchWorker(rdb, notifier.NewConsoleTransport(log), log)
	go dispatchWorker.Start(workerCtx)

	autoPublishWorker := worker.NewAutoPublishWorker(companionsService, cfg.AutoPublishSchedule, log)
	if err := autoPublishWorker.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.AutoPublishSchedule).Msg("Invalid auto-publish schedule")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the scheduler and wait for an in-flight batch run.
	autoPublishWorker.Stop()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
