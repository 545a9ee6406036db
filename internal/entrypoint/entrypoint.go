package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/relations"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// hstsMaxAge is sent when cookies are marked secure, i.e. behind HTTPS.
const hstsMaxAge = 365 * 24 * 60 * 60

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewCatalog wires the catalog service to the gorm repositories of db.
func NewCatalog(db *database.Database, logger *slog.Logger) *catalog.Service {
	bookRepo := books.NewRepository(db.DB)
	relationRepo := relations.NewRepository(db.DB)
	return catalog.NewService(catalog.Stores{
		Books:     bookRepo,
		Relations: relationRepo,
		Likes:     relationRepo,
		Rates:     relationRepo,
		Ratings:   bookRepo,
	}, logger)
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *slog.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var listenErr error
	select {
	case listenErr = <-serveErr:
	case <-quit.Done():
	}
	logger.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if listenErr != nil {
		if onShutdown != nil {
			onShutdown(ctx)
		}
		return fmt.Errorf("listen: %w", listenErr)
	}

	// Stop accepting requests before the background workers go away.
	err := srv.Shutdown(ctx)

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}

// Run opens the database, wires every component and serves until shutdown.
func Run(cfg *config.Config, version string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("starting bookstore", "version", version)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	svc := NewCatalog(db, logger)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks), svc.Ratings(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", "error", err)
			}
		}()

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		defer taskCtxCancel()
		go taskClient.Start(taskCtx)
	}

	var reconcile *scheduler.RatingReconcileScheduler
	if cfg.Ratings.ReconcileEnabled {
		reconcile = scheduler.NewRatingReconcileScheduler(svc.Ratings(), cfg.Ratings.ReconcileSchedule, logger)
		if err := reconcile.Start(context.Background()); err != nil {
			return err
		}
	}

	authService := auth.NewService(db.DB, cfg.Auth, logger)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, db.Driver(), cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfKey(cfg.Auth.SessionSecret, logger)
	if err != nil {
		return err
	}

	loginLimiter := auth.NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)

	if hasUsers, err := authService.HasUsers(context.Background()); err == nil && !hasUsers {
		logger.Warn("no users found, create one with the create-user command")
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        svc,
		Database:       db,
		Logger:         logger,
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(authService, sessionManager),
		SessionManager: sessionManager,
		LoginLimiter:   loginLimiter,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TaskClient:     taskClient,
		Reconciler:     reconcile,
		Version:        version,
	}
	if cfg.Auth.SecureCookies {
		routerCfg.HSTSMaxAge = hstsMaxAge
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconcile != nil {
			reconcile.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		loginLimiter.Stop()
	}

	return Serve(router, cfg, logger, onShutdown)
}

// csrfKey returns the 32-byte CSRF key. A configured secret is used as hex
// when it decodes, raw bytes otherwise; without one a random key is generated.
func csrfKey(secret string, logger *slog.Logger) ([]byte, error) {
	if secret != "" {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
		return []byte(secret), nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	key, err := hex.DecodeString(generated)
	if err != nil {
		return nil, err
	}
	logger.Warn("generated session secret, set AUTH_SESSION_SECRET to keep sessions across restarts")
	return key, nil
}
