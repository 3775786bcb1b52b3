package main

import (
	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/handlers"
	"github.com/solconf/solconf/internal/middleware"
	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for login attempts
	loginLimiter := middleware.NewRateLimiter(10, 20)

	// Health checks
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "solconf"})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.CheckHealth)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Public config export, authorized by solution API key
		publicAPIKeyHandler := handlers.NewAPIKeyHandler(models.GetDB())
		api.GET("/public/solutions/config", publicAPIKeyHandler.PublicConfig)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Solutions
			solutionHandler := handlers.NewSolutionHandler(models.GetDB())
			protected.GET("/solutions", solutionHandler.List)
			protected.GET("/solutions/:id", solutionHandler.Get)
			protected.POST("/solutions", solutionHandler.Create)
			protected.PUT("/solutions/:id", solutionHandler.Update)
			protected.DELETE("/solutions/:id", solutionHandler.Delete)
			protected.GET("/solutions/:id/export", solutionHandler.Export)

			// Solution API keys
			apiKeyHandler := handlers.NewAPIKeyHandler(models.GetDB())
			protected.GET("/solutions/:id/api-keys", apiKeyHandler.List)
			protected.POST("/solutions/:id/api-keys", apiKeyHandler.Create)
			protected.DELETE("/solutions/:id/api-keys/:keyID", apiKeyHandler.Delete)
			protected.PATCH("/solutions/:id/api-keys/:keyID/toggle", apiKeyHandler.Toggle)

			// Parameters
			parameterHandler := handlers.NewParameterHandler(models.GetDB())
			protected.GET("/parameters", parameterHandler.List)
			protected.GET("/parameters/unassigned", parameterHandler.Unassigned)
			protected.POST("/parameters/search", parameterHandler.Search)
			protected.POST("/parameters/bulk", parameterHandler.Bulk)
			protected.GET("/parameters/:id", parameterHandler.Get)
			protected.POST("/parameters", parameterHandler.Create)
			protected.PUT("/parameters/:id", parameterHandler.Update)
			protected.DELETE("/parameters/:id", parameterHandler.Delete)
			protected.POST("/parameters/:id/assign", parameterHandler.Assign)
			protected.POST("/parameters/:id/unassign", parameterHandler.Unassign)

			// Tags
			tagHandler := handlers.NewTagHandler(models.GetDB())
			protected.GET("/tags", tagHandler.List)
			protected.POST("/tags", tagHandler.Create)
			protected.GET("/tags/:id/usage", tagHandler.Usage)
			protected.DELETE("/tags/:id", tagHandler.Delete)

			// Container services
			serviceHandler := handlers.NewContainerServiceHandler(models.GetDB(), svc.taskQueue)
			protected.GET("/services", serviceHandler.List)
			protected.GET("/services/:id", serviceHandler.Get)
			protected.POST("/services", serviceHandler.Create)
			protected.DELETE("/services/:id", serviceHandler.Delete)
			protected.POST("/services/:id/start", serviceHandler.Start)
			protected.POST("/services/:id/stop", serviceHandler.Stop)

			// Compute pools
			poolHandler := handlers.NewComputePoolHandler(models.GetDB())
			protected.GET("/pools", poolHandler.List)
			protected.GET("/pools/:id", poolHandler.Get)
			protected.POST("/pools", poolHandler.Create)
			protected.PUT("/pools/:id", poolHandler.Update)
			protected.DELETE("/pools/:id", poolHandler.Delete)
			protected.POST("/pools/:id/suspend", poolHandler.Suspend)
			protected.POST("/pools/:id/resume", poolHandler.Resume)
		}

		// Admin routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Users
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.GET("/users", userHandler.List)
			admin.POST("/users", userHandler.Create)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)
			admin.POST("/users/:id/reset-password", userHandler.ResetPassword)

			// Settings groups
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB())
			admin.GET("/config/app", systemConfigHandler.GetAppSettings)
			admin.PUT("/config/app", systemConfigHandler.UpdateAppSettings)
			admin.GET("/config/database", systemConfigHandler.GetDatabaseSettings)
			admin.PUT("/config/database", systemConfigHandler.UpdateDatabaseSettings)
			admin.GET("/config/api", systemConfigHandler.GetAPISettings)
			admin.PUT("/config/api", systemConfigHandler.UpdateAPISettings)
			admin.GET("/config/features", systemConfigHandler.GetFeatureFlags)
			admin.PUT("/config/features", systemConfigHandler.UpdateFeatureFlags)

			// System logs
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
			admin.PUT("/system-logs/retention", systemLogHandler.UpdateRetention)
		}
	}
}
