package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Task states reported by Client.State.
const (
	StatePending  = "pending"
	StateRunning  = "running"
	StateSuccess  = "success"
	StateFailure  = "failure"
	StateNotFound = "not_found"
)

// Client runs the rating recompute queue on a backlite store of its own.
type Client struct {
	backlite *backlite.Client
	db       *sql.DB
	workers  int
	logger   *slog.Logger

	mu      sync.RWMutex
	started bool
}

// TasksDBPath returns the path of the task database kept next to the main
// database, with a "-tasks" suffix.
func TasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// NewClient opens the task database next to mainDBPath and registers the
// recompute queue, processed by ratings.
func NewClient(mainDBPath string, cfg Config, ratings RatingRecomputer, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tasks")

	db, err := sql.Open("sqlite3", TasksDBPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	// *slog.Logger satisfies backlite.Logger.
	bl, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := bl.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	bl.Register(NewRecomputeRatingsQueue(ratings, logger))

	return &Client{
		backlite: bl,
		db:       db,
		workers:  cfg.Workers,
		logger:   logger,
	}, nil
}

// Start begins processing queued recomputes. It does not block.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info("task queue started", "workers", c.workers)
	c.backlite.Start(ctx)
}

// Stop waits for running tasks until ctx is done. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	if !c.backlite.Stop(ctx) {
		c.logger.Warn("task queue stopped with timeout, some tasks may not have completed")
		return false
	}
	c.logger.Info("task queue stopped")
	return true
}

// Close releases the task database. Call it after Stop.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// EnqueueRecompute queues a rating recompute of one book, or of every book
// when bookID is 0, and returns the task ID.
func (c *Client) EnqueueRecompute(ctx context.Context, bookID uint) (string, error) {
	ids, err := c.backlite.Add(RecomputeRatingsTask{BookID: bookID}).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue rating recompute: %w", err)
	}
	c.logger.Debug("rating recompute enqueued", "task_id", ids[0], "book_id", bookID)
	return ids[0], nil
}

// State returns the state name of a task. Unknown IDs and tasks already
// removed by retention report StateNotFound.
func (c *Client) State(ctx context.Context, taskID string) (string, error) {
	status, err := c.backlite.Status(ctx, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return StateNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read task %s: %w", taskID, err)
	}
	return stateName(status), nil
}

func stateName(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return StatePending
	case backlite.TaskStatusRunning:
		return StateRunning
	case backlite.TaskStatusSuccess:
		return StateSuccess
	case backlite.TaskStatusFailure:
		return StateFailure
	case backlite.TaskStatusNotFound:
		return StateNotFound
	default:
		return "unknown"
	}
}

// Ping checks that the task database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
