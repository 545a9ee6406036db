package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/validation"
)

// BookInput is a full book write. Any owner sent by the client is ignored.
type BookInput struct {
	Name   string           `json:"name" validate:"required,max=255"`
	Price  *decimal.Decimal `json:"price" validate:"required,price"`
	Author string           `json:"author" validate:"required,max=255"`
}

// BookPatch is a partial book write; nil fields are left untouched.
type BookPatch struct {
	Name   *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Price  *decimal.Decimal `json:"price" validate:"omitempty,price"`
	Author *string          `json:"author" validate:"omitempty,min=1,max=255"`
}

// ListQuery selects and orders a book listing.
type ListQuery struct {
	Filter   BookFilter
	Ordering []OrderField
}

// Service implements the book catalog operations on top of the stores.
type Service struct {
	books     BookStore
	upsert    *RelationUpsert
	likes     *LikeAnnotator
	ratings   *RatingAggregator
	validator *validation.Validator
	logger    *slog.Logger
}

// Stores groups the persistence dependencies of the catalog.
type Stores struct {
	Books     BookStore
	Relations RelationStore
	Likes     LikeCounter
	Rates     RateSource
	Ratings   RatingWriter
}

func NewService(stores Stores, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		books:     stores.Books,
		upsert:    NewRelationUpsert(stores.Relations, stores.Books),
		likes:     NewLikeAnnotator(stores.Likes),
		ratings:   NewRatingAggregator(stores.Rates, stores.Ratings, logger),
		validator: validation.New(),
		logger:    logger,
	}
}

// Ratings exposes the aggregator for background reconciliation.
func (s *Service) Ratings() *RatingAggregator {
	return s.ratings
}

// ListBooks returns the annotated, ordered books matching q. Anyone may list.
func (s *Service) ListBooks(ctx context.Context, q ListQuery) ([]entities.Book, error) {
	books, err := s.books.ListBooks(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	if err := s.likes.Annotate(ctx, books); err != nil {
		return nil, err
	}
	SortBooks(books, q.Ordering)
	return books, nil
}

// GetBook returns one annotated book. Anyone may read.
func (s *Service) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	single := []entities.Book{*book}
	if err := s.likes.Annotate(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// CreateBook stores a new book owned by actor.
func (s *Service) CreateBook(ctx context.Context, actor Actor, in BookInput) (*entities.Book, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	ownerID := actor.ID
	book := &entities.Book{
		Name:    in.Name,
		Price:   *in.Price,
		Author:  in.Author,
		OwnerID: &ownerID,
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("book created", "book_id", book.ID, "owner_id", ownerID)
	return s.GetBook(ctx, book.ID)
}

// UpdateBook replaces the editable fields of a book.
func (s *Service) UpdateBook(ctx context.Context, actor Actor, id uint, in BookInput) (*entities.Book, error) {
	book, err := s.modifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	book.Name = in.Name
	book.Price = *in.Price
	book.Author = in.Author
	return s.save(ctx, actor, book)
}

// PatchBook updates only the fields present in p.
func (s *Service) PatchBook(ctx context.Context, actor Actor, id uint, p BookPatch) (*entities.Book, error) {
	book, err := s.modifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(p); err != nil {
		return nil, err
	}

	if p.Name != nil {
		book.Name = *p.Name
	}
	if p.Price != nil {
		book.Price = *p.Price
	}
	if p.Author != nil {
		book.Author = *p.Author
	}
	return s.save(ctx, actor, book)
}

// DeleteBook removes a book the actor may modify.
func (s *Service) DeleteBook(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.modifiable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.books.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.logger.Info("book deleted", "book_id", id, "actor_id", actor.ID)
	return nil
}

// PatchRelation applies p to the actor's relation to the book and then lets
// the rating aggregator react to the resulting change.
func (s *Service) PatchRelation(ctx context.Context, actor Actor, bookID uint, p RelationPatch) (*entities.UserBookRelation, error) {
	rel, change, err := s.upsert.Patch(ctx, actor, bookID, p)
	if err != nil {
		return nil, err
	}
	if _, err := s.ratings.Handle(ctx, change); err != nil {
		return nil, err
	}
	return rel, nil
}

// modifiable loads a book and checks that actor may change it.
func (s *Service) modifiable(ctx context.Context, actor Actor, id uint) (*entities.Book, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeWrite(actor, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *Service) save(ctx context.Context, actor Actor, book *entities.Book) (*entities.Book, error) {
	if err := s.books.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book %d: %w", book.ID, err)
	}
	s.logger.Info("book updated", "book_id", book.ID, "actor_id", actor.ID)
	return s.GetBook(ctx, book.ID)
}
