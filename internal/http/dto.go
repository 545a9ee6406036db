package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/entities"
)

// moneyPlaces is the number of decimals prices and ratings are rendered with.
const moneyPlaces = 2

// ReaderResponse is a user related to a book.
type ReaderResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// BookResponse is the public representation of a book.
type BookResponse struct {
	ID             uint             `json:"id"`
	Name           string           `json:"name"`
	Price          string           `json:"price"`
	Author         string           `json:"author"`
	AnnotatedLikes int64            `json:"annotated_likes"`
	Rating         *string          `json:"rating"`
	OwnerName      string           `json:"owner_name"`
	Readers        []ReaderResponse `json:"readers"`
}

func newBookResponse(b *entities.Book) BookResponse {
	resp := BookResponse{
		ID:             b.ID,
		Name:           b.Name,
		Price:          b.Price.StringFixed(moneyPlaces),
		Author:         b.Author,
		AnnotatedLikes: b.AnnotatedLikes,
		Readers:        []ReaderResponse{},
	}
	if b.Rating.Valid {
		rating := b.Rating.Decimal.StringFixed(moneyPlaces)
		resp.Rating = &rating
	}
	if b.Owner != nil {
		resp.OwnerName = b.Owner.Username
	}
	for _, reader := range b.Readers() {
		resp.Readers = append(resp.Readers, ReaderResponse{FirstName: reader.FirstName, LastName: reader.LastName})
	}
	return resp
}

func newBookResponses(books []entities.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, newBookResponse(&books[i]))
	}
	return out
}

// OptionalRate distinguishes an absent "rate" key from an explicit null.
// Numbers and numeric strings are both accepted; the range is checked by
// the catalog.
type OptionalRate struct {
	Set   bool
	Value *int
}

func (o *OptionalRate) UnmarshalJSON(data []byte) error {
	o.Set = true
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		o.Value = nil
		return nil
	}

	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return invalidRate(string(raw))
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return invalidRate(text)
	}
	o.Value = &v
	return nil
}

func invalidRate(text string) error {
	return apperrors.Validation("rate", fmt.Sprintf("%q is not a valid choice.", text))
}

// OptionalBool keeps the raw JSON of a boolean key so that an absent key, an
// explicit null and a mistyped value can be told apart and reported under
// the key's own name.
type OptionalBool struct {
	raw []byte
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.raw = append([]byte(nil), bytes.TrimSpace(data)...)
	return nil
}

var (
	trueValues  = map[string]bool{"t": true, "y": true, "yes": true, "true": true, "on": true, "1": true}
	falseValues = map[string]bool{"f": true, "n": true, "no": true, "false": true, "off": true, "0": true}
)

// value returns nil for an absent key. Booleans, 0/1 and the usual form
// spellings ("yes", "off", ...) are accepted.
func (o OptionalBool) value() (*bool, string) {
	if o.raw == nil {
		return nil, ""
	}
	if bytes.Equal(o.raw, []byte("null")) {
		return nil, "This field may not be null."
	}

	text := string(o.raw)
	if o.raw[0] == '"' {
		if err := json.Unmarshal(o.raw, &text); err != nil {
			return nil, "Must be a valid boolean."
		}
	}
	text = strings.ToLower(text)

	var b bool
	switch {
	case trueValues[text]:
		b = true
	case falseValues[text]:
		b = false
	default:
		return nil, "Must be a valid boolean."
	}
	return &b, ""
}

// RelationRequest is the body of a relation write. Absent keys are left
// untouched. "book", when present, must match the book in the URL.
type RelationRequest struct {
	Book        *uint        `json:"book"`
	Like        OptionalBool `json:"like"`
	InBookmarks OptionalBool `json:"in_bookmarks"`
	Rate        OptionalRate `json:"rate"`
}

// patch converts the request into a catalog patch, reporting every
// malformed boolean key at once.
func (r RelationRequest) patch() (catalog.RelationPatch, error) {
	details := map[string]string{}

	like, msg := r.Like.value()
	if msg != "" {
		details["like"] = msg
	}
	inBookmarks, msg := r.InBookmarks.value()
	if msg != "" {
		details["in_bookmarks"] = msg
	}
	if len(details) > 0 {
		return catalog.RelationPatch{}, apperrors.ValidationWithDetails(details)
	}

	return catalog.RelationPatch{
		Like:        like,
		InBookmarks: inBookmarks,
		SetRate:     r.Rate.Set,
		Rate:        r.Rate.Value,
	}, nil
}

// RelationResponse echoes the stored relation.
type RelationResponse struct {
	Book        uint `json:"book"`
	Like        bool `json:"like"`
	InBookmarks bool `json:"in_bookmarks"`
	Rate        *int `json:"rate"`
}

func newRelationResponse(rel *entities.UserBookRelation) RelationResponse {
	resp := RelationResponse{
		Book:        rel.BookID,
		Like:        rel.Like,
		InBookmarks: rel.InBookmarks,
	}
	if rel.Rate != nil {
		rate := int(*rel.Rate)
		resp.Rate = &rate
	}
	return resp
}
