package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// RatingTaskQueue enqueues rating recomputes and reports their progress.
type RatingTaskQueue interface {
	EnqueueRecompute(ctx context.Context, bookID uint) (string, error)
	State(ctx context.Context, taskID string) (string, error)
}

// TasksController exposes the rating recompute queue to staff users.
type TasksController struct {
	queue  RatingTaskQueue
	logger *slog.Logger
}

func NewTasksController(queue RatingTaskQueue, logger *slog.Logger) *TasksController {
	if logger == nil {
		logger = slog.Default()
	}
	return &TasksController{queue: queue, logger: logger}
}

// RecomputeRatingsRequest is the optional body of a recompute request.
// A missing or zero BookID recomputes every book.
type RecomputeRatingsRequest struct {
	BookID uint `json:"book_id"`
}

// TaskEnqueuedResponse is returned for accepted background work.
type TaskEnqueuedResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
	BookID uint   `json:"book_id,omitempty"`
}

// RecomputeRatings handles POST /api/admin/ratings/recompute
func (tc *TasksController) RecomputeRatings(c *gin.Context) {
	var req RecomputeRatingsRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, tc.logger, err)
			return
		}
	}

	taskID, err := tc.queue.EnqueueRecompute(c.Request.Context(), req.BookID)
	if err != nil {
		respondInternalError(c, tc.logger, err)
		return
	}

	tc.logger.Info("rating recompute enqueued", "task_id", taskID, "book_id", req.BookID, "actor_id", actorFrom(c).ID)
	c.JSON(http.StatusAccepted, TaskEnqueuedResponse{
		TaskID: taskID,
		Queue:  tasks.RecomputeRatingsQueue,
		BookID: req.BookID,
	})
}

// TaskStatusResponse reports the state of one task.
type TaskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := tc.queue.State(ctx, taskID)
	if err != nil {
		respondInternalError(c, tc.logger, err)
		return
	}
	if state == tasks.StateNotFound {
		respondError(c, tc.logger, apperrors.NotFound("task"))
		return
	}

	c.JSON(http.StatusOK, TaskStatusResponse{ID: taskID, Status: state})
}
