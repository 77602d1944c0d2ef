package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/handler"
	"github.com/careerflow/assessment-backend/internal/middleware"
	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Career     *handler.CareerHandler
	Training   *handler.TrainingHandler
	Assessment *handler.AssessmentHandler
	Question   *handler.QuestionHandler
	Dashboard  *handler.DashboardHandler
	Monitor    *handler.MonitorHandler
	UserAdmin  *handler.UserAdminHandler
	System     *handler.SystemHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve the raw question bank files statically with daily caching.
	// The files carry answer keys, so they sit behind no auth only in
	// dev; deployments front this with the gateway's admin ACL.
	dataGroup := router.Group("/data")
	dataGroup.Use(middleware.CacheControl(86400))
	{
		dataGroup.Static("/", cfg.DataDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireUserJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. User Group (JWT + Single Device) ───────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		userAPI.GET("/careers", handlers.Career.List)
		userAPI.GET("/careers/:career_id", handlers.Career.Get)

		userAPI.GET("/training/roadmap", handlers.Training.GetRoadmap)
		userAPI.GET("/training/career", handlers.Training.GetSelectedCareer)
		userAPI.POST("/training/career", handlers.Training.SelectCareer)
		userAPI.POST("/training/modules/complete", handlers.Training.CompleteModule)
		userAPI.POST("/training/reset", handlers.Training.Reset)

		userAPI.POST("/assessment/sessions", handlers.Assessment.Start)
		userAPI.GET("/assessment/sessions/:session_id", handlers.Assessment.GetState)
		userAPI.POST("/assessment/sessions/:session_id/answers", handlers.Assessment.Answer)
		userAPI.POST("/assessment/sessions/:session_id/events", handlers.Assessment.ReportEvent)
		userAPI.GET("/assessment/sessions/:session_id/summary", handlers.Assessment.GetSummary)
		userAPI.POST("/assessment/sessions/:session_id/ack", handlers.Assessment.Acknowledge)

		userAPI.GET("/dashboard/progress", handlers.Dashboard.GetProgress)
		userAPI.GET("/dashboard/sessions/:session_id", handlers.Dashboard.GetSessionDetail)
	}

	// ─── 3. WebSocket Group (User WS Auth) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/assessment/:session_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetAdminDashboard)

		adminAPI.GET("/banks", handlers.Question.ListBanks)
		adminAPI.GET("/banks/:slug/questions", handlers.Question.ListQuestions)
		adminAPI.PUT("/banks/:slug", handlers.Question.ImportBank)

		adminAPI.GET("/users", handlers.UserAdmin.ListUsers)
		adminAPI.POST("/users/:id/reset-session", handlers.UserAdmin.ResetUserSession)
		adminAPI.DELETE("/users/:id", handlers.UserAdmin.DeleteUser)

		adminAPI.GET("/monitor/sessions", handlers.Monitor.GetBoard)
		adminAPI.GET("/monitor/events", handlers.Monitor.GetRecentEvents)
		adminAPI.GET("/monitor/sessions/:session_id/events", handlers.Monitor.GetSessionEvents)
		adminAPI.GET("/monitor/sessions/:session_id/stream", handlers.Monitor.MonitorSessionSSE)

		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
