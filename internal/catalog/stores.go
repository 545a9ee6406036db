package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore/internal/entities"
)

// BookFilter narrows a book listing. Zero values mean no filtering.
type BookFilter struct {
	Price  *decimal.Decimal // exact price match
	Search string          // case-insensitive substring of name or author
}

// BookStore persists books. GetBook and DeleteBook return an
// apperrors.ErrNotFound error for unknown ids. Listed and fetched books carry
// their Owner and their Relations with each relation's User.
type BookStore interface {
	ListBooks(ctx context.Context, filter BookFilter) ([]entities.Book, error)
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, book *entities.Book) error
	DeleteBook(ctx context.Context, id uint) error
	BookExists(ctx context.Context, id uint) (bool, error)
}

// RelationStore persists user-book relations. FindRelation returns an
// apperrors.ErrNotFound error when the pair has no relation yet.
type RelationStore interface {
	FindRelation(ctx context.Context, userID, bookID uint) (*entities.UserBookRelation, error)
	CreateRelation(ctx context.Context, rel *entities.UserBookRelation) error
	SaveRelation(ctx context.Context, rel *entities.UserBookRelation) error
}

// LikeCounter counts relations with like set, grouped by book.
type LikeCounter interface {
	CountLikes(ctx context.Context, bookIDs []uint) (map[uint]int64, error)
}

// RateSource reads the non-null rates recorded for a book.
type RateSource interface {
	RatesForBook(ctx context.Context, bookID uint) ([]entities.Rate, error)
}

// RatingWriter stores the aggregated rating on the book row.
type RatingWriter interface {
	SetBookRating(ctx context.Context, bookID uint, rating decimal.NullDecimal) error
	ListBookIDs(ctx context.Context) ([]uint, error)
}
