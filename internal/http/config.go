package http

import (
	"log/slog"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  *catalog.Service
	Database Pinger
	Logger   *slog.Logger

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	LoginLimiter   *auth.RateLimiter
	CSRFSecret     []byte
	SecureCookies  bool

	// HSTSMaxAge enables Strict-Transport-Security when positive.
	HSTSMaxAge int

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Scheduled rating reconcile (optional)
	Reconciler *scheduler.RatingReconcileScheduler

	// Application info
	Version string
}
