package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/config"
	"github.com/upravdom/problembot/internal/http/handlers"
	"github.com/upravdom/problembot/internal/http/middleware"
	"github.com/upravdom/problembot/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	voteHandler *handlers.VoteHandler,
	listHandler *handlers.ListHandler,
	statsHandler *handlers.StatsHandler,
	staffHandler *handlers.StaffHandler,
	adminHandler *handlers.AdminHandler,
	sweepHandler *handlers.SweepHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/files", http.Dir(cfg.StorageRoot))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/token", authHandler.IssueToken)
	}

	api.GET("/ws", wsHandler.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		submitRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
		protected.POST("/problems/:id/reports", submitRateLimit, reportHandler.Submit)

		protected.POST("/reports/:id/votes", voteHandler.Cast)
		protected.GET("/reports/:id/votes", voteHandler.Summary)
		protected.GET("/reports/:id/media", reportHandler.Media)

		protected.POST("/lists/import", listHandler.Import)
		protected.GET("/lists", listHandler.List)
		protected.GET("/lists/:code/problems", listHandler.Problems)
		protected.GET("/lists/:code/stats", listHandler.Stats)

		protected.GET("/users/:id/stats", statsHandler.UserStats)
		protected.GET("/users/:id/problems", statsHandler.UserProblems)
		protected.GET("/users/:id/acts", statsHandler.UserActs)

		protected.POST("/staff/import", staffHandler.Import)
		protected.GET("/staff", staffHandler.List)

		protected.GET("/users", adminHandler.Users)
		protected.POST("/admins", adminHandler.Promote)
		protected.DELETE("/admins/:id", adminHandler.Demote)

		protected.POST("/sweeps/reminders", sweepHandler.Reminders)
		protected.POST("/sweeps/acts", sweepHandler.Acts)
	}

	return r
}
