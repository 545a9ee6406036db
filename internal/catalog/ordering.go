package catalog

import (
	"sort"
	"strings"

	"github.com/mrlokans/bookstore/internal/entities"
)

// OrderField is one sortable book attribute with its direction.
type OrderField struct {
	Name       string
	Descending bool
}

var orderableFields = map[string]func(a, b *entities.Book) int{
	"price": func(a, b *entities.Book) int {
		return a.Price.Cmp(b.Price)
	},
	"author": func(a, b *entities.Book) int {
		return strings.Compare(a.Author, b.Author)
	},
	"id": compareID,
}

func compareID(a, b *entities.Book) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// ParseOrdering reads a comma-separated ordering such as "-price,author".
// Unknown fields are dropped.
func ParseOrdering(raw string) []OrderField {
	var fields []OrderField
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		desc := strings.HasPrefix(term, "-")
		name := strings.TrimPrefix(term, "-")
		if _, ok := orderableFields[name]; !ok {
			continue
		}
		fields = append(fields, OrderField{Name: name, Descending: desc})
	}
	return fields
}

// SortBooks orders books by fields and then by ascending id, so the result
// is deterministic whatever the requested ordering.
func SortBooks(books []entities.Book, fields []OrderField) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := &books[i], &books[j]
		for _, f := range fields {
			c := orderableFields[f.Name](a, b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return compareID(a, b) < 0
	})
}
