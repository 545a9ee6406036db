package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil in cfg disable the routes that need them.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.SessionManager))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Without an auth middleware every request is anonymous and writes are rejected.
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Health endpoints
	health := NewHealthController(cfg.Version)
	if cfg.Database != nil {
		health.AddCheck("database", cfg.Database)
	}
	if cfg.TaskClient != nil {
		health.AddCheck("tasks", cfg.TaskClient)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")

	if cfg.AuthService != nil {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.LoginLimiter, logger)
		authController.RegisterRoutes(api.Group("/auth"))
	}

	if cfg.Catalog != nil {
		books := NewBooksController(cfg.Catalog, logger)
		api.GET("/books", books.List)
		api.POST("/books", auth.RequireAuth(), books.Create)
		api.GET("/books/:id", books.Get)
		api.PUT("/books/:id", auth.RequireAuth(), books.Update)
		api.PATCH("/books/:id", auth.RequireAuth(), books.Patch)
		api.DELETE("/books/:id", auth.RequireAuth(), books.Delete)

		relations := NewRelationsController(cfg.Catalog, logger)
		api.PUT("/book-relations/:book", auth.RequireAuth(), relations.Update)
		api.PATCH("/book-relations/:book", auth.RequireAuth(), relations.Update)
	}

	admin := api.Group("/admin", auth.RequireStaff())

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, logger)
		admin.POST("/ratings/recompute", tasksController.RecomputeRatings)
		api.GET("/tasks/:id", auth.RequireStaff(), tasksController.GetTaskStatus)
	}

	if cfg.Reconciler != nil {
		reconcile := NewReconcileController(cfg.Reconciler, logger)
		admin.GET("/ratings/reconcile", reconcile.Status)
		admin.POST("/ratings/reconcile", reconcile.Run)
	}

	return router
}
