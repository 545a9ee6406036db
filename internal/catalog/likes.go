package catalog

import (
	"context"
	"fmt"

	"github.com/mrlokans/bookstore/internal/entities"
)

// LikeAnnotator fills Book.AnnotatedLikes at read time.
type LikeAnnotator struct {
	counter LikeCounter
}

func NewLikeAnnotator(counter LikeCounter) *LikeAnnotator {
	return &LikeAnnotator{counter: counter}
}

// Annotate sets AnnotatedLikes on every book with a single grouped count.
// Books nobody liked get 0.
func (a *LikeAnnotator) Annotate(ctx context.Context, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]uint, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}

	counts, err := a.counter.CountLikes(ctx, ids)
	if err != nil {
		return fmt.Errorf("annotate likes: %w", err)
	}

	for i := range books {
		books[i].AnnotatedLikes = counts[books[i].ID]
	}
	return nil
}
