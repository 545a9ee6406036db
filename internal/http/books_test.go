package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/apperrors"
)

func bookPath(id uint) string {
	return fmt.Sprintf("/api/books/%d", id)
}

func TestBooksController_List(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodGet, "/api/books", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("returns books ordered by id with annotations", func(t *testing.T) {
		s := newTestServer(t)
		first := s.createBook(t, "owner", "Dune", "25.00", "Herbert")
		second := s.createBook(t, "reader", "Emma", "10.5", "Austen")

		w := s.do(t, http.MethodGet, "/api/books", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[[]BookResponse](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
		assert.Equal(t, "10.50", list[1].Price)
		assert.Equal(t, "reader", list[1].OwnerName)
		assert.Zero(t, list[0].AnnotatedLikes)
		assert.Nil(t, list[0].Rating)
		assert.Empty(t, list[0].Readers)
	})
}

func TestBooksController_ListFilters(t *testing.T) {
	s := newTestServer(t)
	dune := s.createBook(t, "owner", "Dune", "25.00", "Frank Herbert")
	emma := s.createBook(t, "owner", "Emma", "10.00", "Jane Austen")
	mansfield := s.createBook(t, "owner", "Mansfield Park", "25.00", "Jane Austen")

	ids := func(path string) []uint {
		w := s.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []uint
		for _, b := range decode[[]BookResponse](t, w) {
			out = append(out, b.ID)
		}
		return out
	}

	tests := []struct {
		name string
		path string
		want []uint
	}{
		{"price filter", "/api/books?price=25", []uint{dune.ID, mansfield.ID}},
		{"search matches author", "/api/books?search=austen", []uint{emma.ID, mansfield.ID}},
		{"search matches name", "/api/books?search=DUNE", []uint{dune.ID}},
		{"order by price", "/api/books?ordering=price", []uint{emma.ID, dune.ID, mansfield.ID}},
		{"order by price descending", "/api/books?ordering=-price", []uint{dune.ID, mansfield.ID, emma.ID}},
		{"order by author then price", "/api/books?ordering=author,-price", []uint{dune.ID, mansfield.ID, emma.ID}},
		{"unknown ordering ignored", "/api/books?ordering=name", []uint{dune.ID, emma.ID, mansfield.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.path))
		})
	}

	t.Run("invalid price", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books?price=cheap", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Create(t *testing.T) {
	t.Run("owner is the caller", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", "reader", gin.H{
			"name":     "Dune",
			"price":    "225",
			"author":   "Herbert",
			"owner":    s.users["owner"].ID,
			"rating":   "4.00",
			"readers":  []any{},
			"username": "owner",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		book := decode[BookResponse](t, w)
		assert.Equal(t, "reader", book.OwnerName)
		assert.Equal(t, "225.00", book.Price)
		assert.Nil(t, book.Rating)
		assert.Zero(t, book.AnnotatedLikes)
	})

	t.Run("requires authentication", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", "", gin.H{"name": "Dune", "price": "25", "author": "Herbert"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("validation errors name fields", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", "owner", gin.H{"name": "", "price": "1000.00"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, apperrors.CodeValidation, resp.Code)
		assert.Contains(t, resp.Details, "name")
		assert.Contains(t, resp.Details, "price")
		assert.Contains(t, resp.Details, "author")
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", "owner", `{"name":`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[ErrorResponse](t, w).Details, "body")
	})
}

func TestBooksController_Get(t *testing.T) {
	s := newTestServer(t)
	book := s.createBook(t, "owner", "Dune", "25.00", "Herbert")

	t.Run("found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, bookPath(book.ID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Dune", decode[BookResponse](t, w).Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, bookPath(book.ID+100), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non numeric id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books/dune", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_Update(t *testing.T) {
	s := newTestServer(t)
	book := s.createBook(t, "owner", "Dune", "25.00", "Herbert")
	update := gin.H{"name": "Dune Messiah", "price": "30.00", "author": "Frank Herbert"}

	t.Run("non owner is denied and book unchanged", func(t *testing.T) {
		w := s.do(t, http.MethodPut, bookPath(book.ID), "reader", update)

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperrors.PermissionDeniedMessage, decode[ErrorResponse](t, w).Error)

		current := decode[BookResponse](t, s.do(t, http.MethodGet, bookPath(book.ID), "", nil))
		assert.Equal(t, "Dune", current.Name)
		assert.Equal(t, "25.00", current.Price)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		w := s.do(t, http.MethodPut, bookPath(book.ID), "", update)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("owner may update", func(t *testing.T) {
		w := s.do(t, http.MethodPut, bookPath(book.ID), "owner", update)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[BookResponse](t, w)
		assert.Equal(t, "Dune Messiah", updated.Name)
		assert.Equal(t, "30.00", updated.Price)
		assert.Equal(t, "owner", updated.OwnerName)
	})

	t.Run("staff may update any book", func(t *testing.T) {
		w := s.do(t, http.MethodPut, bookPath(book.ID), "admin", gin.H{"name": "Children of Dune", "price": "31.00", "author": "Frank Herbert"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[BookResponse](t, w)
		assert.Equal(t, "Children of Dune", updated.Name)
		assert.Equal(t, "owner", updated.OwnerName, "staff edits keep the owner")
	})

	t.Run("full update requires every field", func(t *testing.T) {
		w := s.do(t, http.MethodPut, bookPath(book.ID), "owner", gin.H{"name": "Dune"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_Patch(t *testing.T) {
	s := newTestServer(t)
	book := s.createBook(t, "owner", "Dune", "25.00", "Herbert")

	w := s.do(t, http.MethodPatch, bookPath(book.ID), "owner", gin.H{"price": "19.99"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[BookResponse](t, w)
	assert.Equal(t, "19.99", patched.Price)
	assert.Equal(t, "Dune", patched.Name)
	assert.Equal(t, "Herbert", patched.Author)

	w = s.do(t, http.MethodPatch, bookPath(book.ID), "reader", gin.H{"price": "1.00"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBooksController_Delete(t *testing.T) {
	s := newTestServer(t)
	book := s.createBook(t, "owner", "Dune", "25.00", "Herbert")

	w := s.do(t, http.MethodDelete, bookPath(book.ID), "reader", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, bookPath(book.ID), "owner", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, bookPath(book.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, bookPath(book.ID), "owner", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
