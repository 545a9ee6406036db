package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/scheduler"
)

// RatingReconciler runs the scheduled rating reconcile and reports on it.
type RatingReconciler interface {
	RunNow(ctx context.Context) (int, error)
	NextRun() *time.Time
	LastRun() (time.Time, int, error)
}

// ReconcileController lets staff inspect and trigger the rating reconcile.
type ReconcileController struct {
	reconciler RatingReconciler
	logger     *slog.Logger
}

func NewReconcileController(reconciler RatingReconciler, logger *slog.Logger) *ReconcileController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileController{reconciler: reconciler, logger: logger}
}

// ReconcileStatusResponse describes the schedule and the last finished run.
type ReconcileStatusResponse struct {
	NextRun   *time.Time `json:"next_run"`
	LastRun   *time.Time `json:"last_run"`
	LastBooks int        `json:"last_books"`
	LastError string     `json:"last_error,omitempty"`
}

// ReconcileResultResponse reports a reconcile run triggered by hand.
type ReconcileResultResponse struct {
	Books int `json:"books"`
}

// Status handles GET /api/admin/ratings/reconcile
func (rc *ReconcileController) Status(c *gin.Context) {
	resp := ReconcileStatusResponse{NextRun: rc.reconciler.NextRun()}

	last, books, err := rc.reconciler.LastRun()
	if !last.IsZero() {
		resp.LastRun = &last
		resp.LastBooks = books
	}
	if err != nil {
		resp.LastError = err.Error()
	}

	c.JSON(http.StatusOK, resp)
}

// Run handles POST /api/admin/ratings/reconcile
func (rc *ReconcileController) Run(c *gin.Context) {
	books, err := rc.reconciler.RunNow(c.Request.Context())
	if errors.Is(err, scheduler.ErrAlreadyRunning) {
		respondError(c, rc.logger, apperrors.Conflict("A rating reconcile is already running."))
		return
	}
	if err != nil {
		respondInternalError(c, rc.logger, err)
		return
	}

	rc.logger.Info("rating reconcile run by hand", "books", books, "actor_id", actorFrom(c).ID)
	c.JSON(http.StatusOK, ReconcileResultResponse{Books: books})
}
