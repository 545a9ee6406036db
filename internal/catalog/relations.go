package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
)

// RelationPatch carries the fields present in a relation write. Nil pointers
// are left untouched. The rate is applied only when SetRate is true, and a
// nil Rate then clears it.
type RelationPatch struct {
	Like        *bool
	InBookmarks *bool
	SetRate     bool
	Rate        *int
}

// RelationChange describes a persisted relation write.
type RelationChange struct {
	UserID  uint
	BookID  uint
	Created bool
	OldRate *entities.Rate
	NewRate *entities.Rate
}

// NeedsRecompute reports whether the book's rating may have changed.
func (c RelationChange) NeedsRecompute() bool {
	return c.Created || !entities.SameRate(c.OldRate, c.NewRate)
}

// RelationUpsert finds or lazily creates a user's relation to a book and
// applies partial updates to it.
type RelationUpsert struct {
	relations RelationStore
	books     BookStore
}

func NewRelationUpsert(relations RelationStore, books BookStore) *RelationUpsert {
	return &RelationUpsert{relations: relations, books: books}
}

// GetOrCreate returns the actor's relation to the book, creating and
// persisting an empty one when none exists. Book ownership is never consulted.
func (u *RelationUpsert) GetOrCreate(ctx context.Context, actor Actor, bookID uint) (*entities.UserBookRelation, bool, error) {
	if !actor.Authenticated() {
		return nil, false, apperrors.ErrUnauthorized
	}

	rel, err := u.relations.FindRelation(ctx, actor.ID, bookID)
	if err == nil {
		return rel, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	exists, err := u.books.BookExists(ctx, bookID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, apperrors.NotFound("book")
	}

	rel = &entities.UserBookRelation{UserID: actor.ID, BookID: bookID}
	if err := u.relations.CreateRelation(ctx, rel); err != nil {
		return nil, false, err
	}
	return rel, true, nil
}

// Patch applies p to the actor's relation to the book and persists it. An
// invalid rate is rejected before anything in the relation changes.
func (u *RelationUpsert) Patch(ctx context.Context, actor Actor, bookID uint, p RelationPatch) (*entities.UserBookRelation, RelationChange, error) {
	rel, created, err := u.GetOrCreate(ctx, actor, bookID)
	if err != nil {
		return nil, RelationChange{}, err
	}

	newRate := rel.Rate
	if p.SetRate {
		newRate, err = parseRate(p.Rate)
		if err != nil {
			return nil, RelationChange{}, err
		}
	}

	change := RelationChange{
		UserID:  actor.ID,
		BookID:  bookID,
		Created: created,
		OldRate: rel.Rate,
		NewRate: newRate,
	}

	if p.Like != nil {
		rel.Like = *p.Like
	}
	if p.InBookmarks != nil {
		rel.InBookmarks = *p.InBookmarks
	}
	rel.Rate = newRate

	if err := u.relations.SaveRelation(ctx, rel); err != nil {
		return nil, RelationChange{}, err
	}
	return rel, change, nil
}

func parseRate(v *int) (*entities.Rate, error) {
	if v == nil {
		return nil, nil
	}
	r := entities.Rate(*v)
	if *v < 0 || *v > math.MaxUint8 || !r.Valid() {
		return nil, apperrors.Validation("rate", fmt.Sprintf("%q is not a valid choice.", strconv.Itoa(*v)))
	}
	return &r, nil
}
