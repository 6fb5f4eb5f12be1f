package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/audit"
	"github.com/classware/classman-backend/internal/authz"
	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/database"
	"github.com/classware/classman-backend/internal/handler"
	"github.com/classware/classman-backend/internal/logger"
	"github.com/classware/classman-backend/internal/middleware"
	"github.com/classware/classman-backend/internal/repository"
	"github.com/classware/classman-backend/internal/router"
	"github.com/classware/classman-backend/internal/service"
	"github.com/classware/classman-backend/internal/validator"
	"github.com/classware/classman-backend/internal/websocket"
	"github.com/classware/classman-backend/internal/worker"
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
		Msg("Starting ClassMan Backend")

	// A missing signing key is fatal in release mode. Anywhere else the
	// server runs on the development key, loudly.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = config.DevJWTSecret
		log.Warn().Msg("JWT_SECRET not set, using insecure development key")
	}

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
	permRepo := repository.NewPermissionRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)
	postRepo := repository.NewPostRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	recorder := audit.NewRecorder(rdb, log)
	hub := websocket.NewHub(log)

	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(userRepo)
	permService := service.NewPermissionService(permRepo, recorder)
	classService := service.NewClassService(classRepo)
	courseService := service.NewCourseService(courseRepo)
	studentService := service.NewStudentService(studentRepo)
	gradeService := service.NewGradeService(gradeRepo, rdb, cfg, log)
	postService := service.NewPostService(postRepo, hub)

	// ─── Authorization Gate ────────────────────────────────────────────
	evaluator := authz.NewEvaluator(permRepo)
	gate := middleware.NewGate(authService, authService, evaluator, recorder, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService, permService, recorder),
		User:       handler.NewUserHandler(userService, authService),
		Permission: handler.NewPermissionHandler(permService),
		Class:      handler.NewClassHandler(classService, studentService),
		Course:     handler.NewCourseHandler(courseService),
		Student:    handler.NewStudentHandler(studentService),
		Grade:      handler.NewGradeHandler(gradeService, studentService),
		Post:       handler.NewPostHandler(postService),
		WS:         handler.NewWSHandler(hub, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)
	go hub.Run(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(gate, handlers, cfg)

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

	// 2. Stop the hub and the audit worker; give the worker a moment to
	// flush its remaining batch.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
