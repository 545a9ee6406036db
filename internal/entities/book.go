package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID      uint                `gorm:"primaryKey" json:"id"`
	Name    string              `gorm:"size:255;not null" json:"name"`
	Price   decimal.Decimal     `gorm:"type:decimal(5,2);not null" json:"price"`
	Author  string              `gorm:"size:255;not null" json:"author"`
	OwnerID *uint               `gorm:"index" json:"owner_id"`
	Owner   *User               `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Rating  decimal.NullDecimal `gorm:"type:decimal(3,2)" json:"rating"` // null until the first rate

	// Relations are the per-user like/bookmark/rate records; their users are the book's readers.
	Relations []UserBookRelation `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AnnotatedLikes is filled per request and never persisted.
	AnnotatedLikes int64 `gorm:"-" json:"annotated_likes"`
}

func (Book) TableName() string {
	return "books"
}

// Readers returns the users related to the book, in relation order.
// Relations must be preloaded with their User.
func (b *Book) Readers() []User {
	readers := make([]User, 0, len(b.Relations))
	for _, rel := range b.Relations {
		if rel.User != nil {
			readers = append(readers, *rel.User)
		}
	}
	return readers
}

// IsOwnedBy reports whether userID owns the book.
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}
