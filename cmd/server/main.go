package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/ngmvpwd/pakaya-sub001/internal/config"
	"github.com/ngmvpwd/pakaya-sub001/internal/database"
	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/handler"
	"github.com/ngmvpwd/pakaya-sub001/internal/logger"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
	"github.com/ngmvpwd/pakaya-sub001/internal/router"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
	"github.com/ngmvpwd/pakaya-sub001/internal/validator"
	"github.com/ngmvpwd/pakaya-sub001/internal/websocket"
	"github.com/ngmvpwd/pakaya-sub001/internal/worker"
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
		Msg("Starting Pakaya Attendance Backend")

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
	userRepo := repository.NewUserRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	holidayRepo := repository.NewHolidayRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)

	// ─── Event Bus ─────────────────────────────────────────────────────
	bus := event.NewBus(log)

	// ─── Initialize Services ──────────────────────────────────────────
	alertQueue := worker.NewAlertQueue(rdb, log)

	authService := service.NewAuthService(cfg, userRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo, teacherRepo, bus, alertQueue, log)
	teacherService := service.NewTeacherService(teacherRepo, authService, bus, log)
	departmentService := service.NewDepartmentService(departmentRepo, bus, log)
	holidayService := service.NewHolidayService(holidayRepo)
	dashboardService := service.NewDashboardService(attendanceRepo, teacherRepo, holidayRepo, alertRepo, rdb, cfg.StatsCacheTTL, log)
	backupService := service.NewBackupService(snapshotRepo, bus, cfg.SchoolLabel, log)

	// ─── WebSocket Fan-Out ─────────────────────────────────────────────
	hub := websocket.NewHub(log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Teacher:    handler.NewTeacherHandler(teacherService),
		Department: handler.NewDepartmentHandler(departmentService),
		Holiday:    handler.NewHolidayHandler(holidayService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Backup:     handler.NewBackupHandler(backupService, cfg.MaxImportBytes),
		WS:         handler.NewWSHandler(hub, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	go hub.Run(workerCtx, bus)
	go dashboardService.StartCacheInvalidator(workerCtx, bus)

	alertWorker := worker.NewAlertWorker(alertRepo, rdb, log)
	go alertWorker.Start(workerCtx)

	if cfg.BackupInterval > 0 {
		backupWorker := worker.NewBackupWorker(backupService, cfg.BackupDir, cfg.BackupInterval, 14, log)
		go backupWorker.Start(workerCtx)
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

	// 2. Stop the hub and workers, letting the alert queue drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
