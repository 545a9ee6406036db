// Package users provides database operations for user management that sit
// outside authentication: lookup, listing and removal.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername(ctx, "alice")
package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Repository handles user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user").WithCause(err)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user").WithCause(err)
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by ID.
func (r *Repository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// DeleteUser removes a user. Books they own lose their owner and their
// relations are dropped. Returns the IDs of books whose rating may have changed.
func (r *Repository) DeleteUser(ctx context.Context, id uint) ([]uint, error) {
	var ratedBooks []uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.UserBookRelation{}).
			Where("user_id = ? AND rate IS NOT NULL", id).
			Distinct().
			Pluck("book_id", &ratedBooks).Error
		if err != nil {
			return fmt.Errorf("failed to collect rated books: %w", err)
		}

		err = tx.Model(&entities.Book{}).Where("owner_id = ?", id).Update("owner_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to release owned books: %w", err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&entities.UserBookRelation{}).Error; err != nil {
			return fmt.Errorf("failed to delete relations: %w", err)
		}

		result := tx.Delete(&entities.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratedBooks, nil
}
