// Package books provides database operations for the book catalog.
//
// # Interface Implementation
//
//	var _ catalog.BookStore = (*Repository)(nil)
//	var _ catalog.RatingWriter = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBook(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// withDetails preloads what the serializer needs: the owner and each reader.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").
		Preload("Relations", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Relations.User")
}

// ListBooks returns the books matching filter, ordered by id.
func (r *Repository) ListBooks(ctx context.Context, filter catalog.BookFilter) ([]entities.Book, error) {
	query := withDetails(r.db.WithContext(ctx)).Model(&entities.Book{})

	if filter.Price != nil {
		query = query.Where("price = ?", *filter.Price)
	}
	// Every whitespace-separated term must match the name or the author.
	for _, term := range strings.Fields(filter.Search) {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}

	var books []entities.Book
	if err := query.Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetBook retrieves a book by ID with its owner and readers.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := withDetails(r.db.WithContext(ctx)).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("book").WithCause(err)
		}
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return &book, nil
}

// BookExists reports whether a book with the given ID exists.
func (r *Repository) BookExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check book %d: %w", id, err)
	}
	return count > 0, nil
}

// CreateBook inserts a book. Associations are never written through the book.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// UpdateBook writes the editable columns of a book. Owner and rating are left alone.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", book.ID).Updates(map[string]any{
		"name":   book.Name,
		"price":  book.Price,
		"author": book.Author,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("book")
	}
	return nil
}

// DeleteBook removes a book and its relations.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.UserBookRelation{}).Error; err != nil {
			return fmt.Errorf("failed to delete relations of book %d: %w", id, err)
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete book %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("book")
		}
		return nil
	})
}

// SetBookRating stores the aggregated rating. An invalid NullDecimal writes NULL.
func (r *Repository) SetBookRating(ctx context.Context, bookID uint, rating decimal.NullDecimal) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", bookID).Update("rating", rating)
	if result.Error != nil {
		return fmt.Errorf("failed to set rating of book %d: %w", bookID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("book")
	}
	return nil
}

// ListBookIDs returns every book ID in ascending order.
func (r *Repository) ListBookIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list book ids: %w", err)
	}
	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
