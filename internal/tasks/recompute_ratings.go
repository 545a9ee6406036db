package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/shopspring/decimal"
)

// RecomputeRatingsQueue is the queue name of RecomputeRatingsTask.
const RecomputeRatingsQueue = "recompute_ratings"

// RatingRecomputer recomputes stored book ratings from their relations.
type RatingRecomputer interface {
	Recompute(ctx context.Context, bookID uint) (decimal.NullDecimal, error)
	RecomputeAll(ctx context.Context) (int, error)
}

// RecomputeRatingsTask rebuilds Book.Rating from the current rates. A zero
// BookID recomputes every book.
type RecomputeRatingsTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for rating recomputation.
func (t RecomputeRatingsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        RecomputeRatingsQueue,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RecomputeRatingsProcessor creates a processor function for RecomputeRatingsTask.
func RecomputeRatingsProcessor(ratings RatingRecomputer, logger *slog.Logger) backlite.QueueProcessor[RecomputeRatingsTask] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, task RecomputeRatingsTask) error {
		if ratings == nil {
			return fmt.Errorf("rating aggregator not configured")
		}

		if task.BookID == 0 {
			n, err := ratings.RecomputeAll(ctx)
			if err != nil {
				return fmt.Errorf("recompute all ratings after %d books: %w", n, err)
			}
			logger.Info("ratings recomputed", "books", n)
			return nil
		}

		rating, err := ratings.Recompute(ctx, task.BookID)
		if err != nil {
			return err
		}
		logger.Info("rating recomputed", "book_id", task.BookID, "rating", rating.Decimal.StringFixed(2), "rated", rating.Valid)
		return nil
	}
}

// NewRecomputeRatingsQueue creates a backlite queue for rating recomputation.
func NewRecomputeRatingsQueue(ratings RatingRecomputer, logger *slog.Logger) backlite.Queue {
	return backlite.NewQueue(RecomputeRatingsProcessor(ratings, logger))
}
