package entities

import (
	"time"
)

// Rate is a user's 1 to 5 score for a book.
type Rate uint8

const (
	RateBad      Rate = 1
	RateFine     Rate = 2
	RateGood     Rate = 3
	RateVeryGood Rate = 4
	RateAmazing  Rate = 5
)

var rateLabels = map[Rate]string{
	RateBad:      "Bad",
	RateFine:     "Fine",
	RateGood:     "Good",
	RateVeryGood: "Very Good",
	RateAmazing:  "Amazing",
}

// Valid reports whether r is one of the five allowed rates.
func (r Rate) Valid() bool {
	_, ok := rateLabels[r]
	return ok
}

func (r Rate) String() string {
	if label, ok := rateLabels[r]; ok {
		return label
	}
	return "Unknown"
}

// UserBookRelation is one user's interaction with one book. It is created
// lazily on the first interaction.
type UserBookRelation struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	UserID      uint  `gorm:"index:idx_relation_user_book;not null" json:"user"`
	User        *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BookID      uint  `gorm:"index:idx_relation_user_book;index;not null" json:"book"`
	Like        bool  `gorm:"column:liked;not null;default:false" json:"like"`
	InBookmarks bool  `gorm:"not null;default:false" json:"in_bookmarks"`
	Rate        *Rate `json:"rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserBookRelation) TableName() string {
	return "user_book_relations"
}

// SameRate reports whether two optional rates are equal, treating two nils as equal.
func SameRate(a, b *Rate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
