// Package relations provides database operations for user-book relations:
// likes, bookmarks and rates.
//
// # Interface Implementation
//
//	var _ catalog.RelationStore = (*Repository)(nil)
//	var _ catalog.LikeCounter = (*Repository)(nil)
//	var _ catalog.RateSource = (*Repository)(nil)
package relations

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Repository handles all relation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new relations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindRelation returns the oldest relation between the user and the book.
func (r *Repository) FindRelation(ctx context.Context, userID, bookID uint) (*entities.UserBookRelation, error) {
	var rel entities.UserBookRelation
	err := r.db.WithContext(ctx).
		Where(map[string]any{"user_id": userID, "book_id": bookID}).
		Order("id ASC").
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("relation").WithCause(err)
		}
		return nil, fmt.Errorf("failed to find relation of user %d to book %d: %w", userID, bookID, err)
	}
	return &rel, nil
}

// CreateRelation inserts a new relation.
func (r *Repository) CreateRelation(ctx context.Context, rel *entities.UserBookRelation) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(rel).Error; err != nil {
		return fmt.Errorf("failed to create relation: %w", err)
	}
	return nil
}

// SaveRelation writes the like, bookmark and rate columns of an existing relation.
func (r *Repository) SaveRelation(ctx context.Context, rel *entities.UserBookRelation) error {
	var rate any
	if rel.Rate != nil {
		rate = int64(*rel.Rate)
	}

	result := r.db.WithContext(ctx).Model(&entities.UserBookRelation{}).Where("id = ?", rel.ID).Updates(map[string]any{
		"liked":        rel.Like,
		"in_bookmarks": rel.InBookmarks,
		"rate":         rate,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to save relation %d: %w", rel.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("relation")
	}
	return nil
}

type likeCount struct {
	BookID uint
	Likes  int64
}

// CountLikes returns the number of liking relations per book. Books without
// likes are absent from the map.
func (r *Repository) CountLikes(ctx context.Context, bookIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(bookIDs))
	if len(bookIDs) == 0 {
		return counts, nil
	}

	var rows []likeCount
	err := r.db.WithContext(ctx).Model(&entities.UserBookRelation{}).
		Select("book_id, COUNT(*) AS likes").
		Where("liked = ?", true).
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	for _, row := range rows {
		counts[row.BookID] = row.Likes
	}
	return counts, nil
}

// RatesForBook returns the non-null rates given to a book.
func (r *Repository) RatesForBook(ctx context.Context, bookID uint) ([]entities.Rate, error) {
	var rates []entities.Rate
	err := r.db.WithContext(ctx).Model(&entities.UserBookRelation{}).
		Where("book_id = ? AND rate IS NOT NULL", bookID).
		Order("id ASC").
		Pluck("rate", &rates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read rates of book %d: %w", bookID, err)
	}
	return rates, nil
}
