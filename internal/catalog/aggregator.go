package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore/internal/entities"
)

// ratingPlaces is the scale of Book.Rating.
const ratingPlaces = 2

// RatingAggregator keeps Book.Rating equal to the mean of its relations' rates.
type RatingAggregator struct {
	rates  RateSource
	books  RatingWriter
	logger *slog.Logger
}

// NewRatingAggregator creates an aggregator reading rates from rates and
// writing the result through books.
func NewRatingAggregator(rates RateSource, books RatingWriter, logger *slog.Logger) *RatingAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingAggregator{rates: rates, books: books, logger: logger}
}

// AverageRate returns the mean of rates rounded half-to-even to two decimal
// places, or an invalid NullDecimal when there are no rates.
func AverageRate(rates []entities.Rate) decimal.NullDecimal {
	if len(rates) == 0 {
		return decimal.NullDecimal{}
	}

	var sum int64
	for _, r := range rates {
		sum += int64(r)
	}
	mean := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(rates))))
	return decimal.NewNullDecimal(mean.RoundBank(ratingPlaces))
}

// Recompute reads every non-null rate of the book and stores their mean.
// Storage errors are returned unchanged in meaning and never retried.
func (a *RatingAggregator) Recompute(ctx context.Context, bookID uint) (decimal.NullDecimal, error) {
	rates, err := a.rates.RatesForBook(ctx, bookID)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("recompute rating of book %d: %w", bookID, err)
	}

	rating := AverageRate(rates)
	if err := a.books.SetBookRating(ctx, bookID, rating); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("recompute rating of book %d: %w", bookID, err)
	}

	a.logger.Debug("rating recomputed", "book_id", bookID, "rates", len(rates), "rating", formatRating(rating))
	return rating, nil
}

// Handle consumes a relation write and recomputes the book's rating when the
// relation is new or its rate changed. It reports whether a recompute ran.
func (a *RatingAggregator) Handle(ctx context.Context, change RelationChange) (bool, error) {
	if !change.NeedsRecompute() {
		return false, nil
	}
	if _, err := a.Recompute(ctx, change.BookID); err != nil {
		return false, err
	}
	return true, nil
}

// RecomputeAll recomputes every book and returns how many were updated.
// It stops at the first storage error.
func (a *RatingAggregator) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := a.books.ListBookIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("recompute all ratings: %w", err)
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := a.Recompute(ctx, id); err != nil {
			return i, err
		}
	}

	a.logger.Info("ratings reconciled", "books", len(ids))
	return len(ids), nil
}

func formatRating(r decimal.NullDecimal) string {
	if !r.Valid {
		return "null"
	}
	return r.Decimal.StringFixed(ratingPlaces)
}
