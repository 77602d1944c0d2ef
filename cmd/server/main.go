package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/database"
	"github.com/careerflow/assessment-backend/internal/handler"
	"github.com/careerflow/assessment-backend/internal/logger"
	"github.com/careerflow/assessment-backend/internal/repository"
	"github.com/careerflow/assessment-backend/internal/router"
	"github.com/careerflow/assessment-backend/internal/service"
	"github.com/careerflow/assessment-backend/internal/validator"
	"github.com/careerflow/assessment-backend/internal/worker"
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
		Msg("Starting CareerFlow Assessment Backend")

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
	careerRepo := repository.NewCareerRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewAssessmentSessionRepository(pool)
	answerRepo := repository.NewSessionAnswerRepository(pool)
	trainingRepo := repository.NewTrainingRepository(pool)
	eventRepo := repository.NewProctorEventRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool, rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	careerService := service.NewCareerService(careerRepo)
	trainingService := service.NewTrainingService(trainingRepo, careerRepo, log)
	questionService := service.NewQuestionService(questionRepo)
	assessmentService := service.NewAssessmentService(cfg, sessionRepo, questionRepo, trainingService, rdb, log)
	dashboardService := service.NewDashboardService(dashboardRepo, sessionRepo, answerRepo, trainingService)
	monitorService := service.NewMonitorService(monitorRepo, eventRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		Career:     handler.NewCareerHandler(careerService),
		Training:   handler.NewTrainingHandler(trainingService),
		Assessment: handler.NewAssessmentHandler(assessmentService),
		Question:   handler.NewQuestionHandler(questionService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Monitor:    handler.NewMonitorHandler(rdb, monitorService, log),
		UserAdmin:  handler.NewUserAdminHandler(userService, authService),
		System:     handler.NewSystemHandler(rdb, log),
		WS:         handler.NewWSHandler(assessmentService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerWorker := worker.NewAnswerLogWorker(pool, rdb, log)
	eventWorker := worker.NewProctorEventWorker(pool, rdb, log)
	resultWorker := worker.NewResultWorker(pool, rdb, log)

	go answerWorker.Start(workerCtx)
	go eventWorker.Start(workerCtx)
	go resultWorker.Start(workerCtx)

	// ─── Seed Question Banks ──────────────────────────────────────────
	// On a fresh install, load the bank files from DATA_DIR so the server
	// serves tests without a manual import.
	seedBanks(ctx, cfg, questionService, log)

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

	// 2. Flush live sessions so their results reach the queue.
	assessmentService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// seedBanks imports the bank files when every bank is empty. Populated
// installs are left untouched; cmd/seed-questions force-replaces.
func seedBanks(ctx context.Context, cfg *config.Config, questionService *service.QuestionService, log zerolog.Logger) {
	banks, err := questionService.ListBanks(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Bank seed check failed")
		return
	}

	for _, b := range banks {
		if b.Count > 0 {
			return
		}
	}

	counts, err := questionService.ImportFromDir(ctx, cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("Bank seed failed")
		return
	}
	for slug, count := range counts {
		log.Info().Str("bank", slug).Int("questions", count).Msg("Seeded question bank")
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
