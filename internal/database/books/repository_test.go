package books

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "books.db"),
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db.DB), db.DB
}

func createBook(t *testing.T, repo *Repository, name, price, author string) *entities.Book {
	t.Helper()
	book := &entities.Book{Name: name, Price: decimal.RequireFromString(price), Author: author}
	require.NoError(t, repo.CreateBook(context.Background(), book))
	return book
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	owner := &entities.User{Username: "owner"}
	require.NoError(t, db.Create(owner).Error)

	book := &entities.Book{Name: "Test book 1", Price: decimal.RequireFromString("25"), Author: "Author 1", OwnerID: &owner.ID}
	require.NoError(t, repo.CreateBook(ctx, book))
	assert.NotZero(t, book.ID)

	loaded, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test book 1", loaded.Name)
	assert.Equal(t, "25.00", loaded.Price.StringFixed(2))
	require.NotNil(t, loaded.Owner)
	assert.Equal(t, "owner", loaded.Owner.Username)
	assert.False(t, loaded.Rating.Valid)
}

func TestRepository_GetBook_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.GetBook(context.Background(), 999)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListBooks_PreloadsReaders(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	book := createBook(t, repo, "Test book 1", "25", "Author 1")
	alice := &entities.User{Username: "alice", FirstName: "Alice", LastName: "A"}
	bob := &entities.User{Username: "bob", FirstName: "Bob", LastName: "B"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)
	require.NoError(t, db.Create(&entities.UserBookRelation{UserID: alice.ID, BookID: book.ID}).Error)
	require.NoError(t, db.Create(&entities.UserBookRelation{UserID: bob.ID, BookID: book.ID}).Error)

	books, err := repo.ListBooks(ctx, catalog.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)

	readers := books[0].Readers()
	require.Len(t, readers, 2)
	assert.Equal(t, "Alice", readers[0].FirstName)
	assert.Equal(t, "Bob", readers[1].FirstName)
}

func TestRepository_ListBooks_Filters(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	createBook(t, repo, "Test book 1", "25", "Author 1")
	createBook(t, repo, "Test book 2", "55", "Author 5")
	createBook(t, repo, "Test book Author 1", "55", "Author 2")
	createBook(t, repo, "100%_sure", "10", "Someone")
	createBook(t, repo, "War and Peace", "30", "Leo Tolstoy")

	names := func(books []entities.Book) []string {
		out := make([]string, 0, len(books))
		for _, b := range books {
			out = append(out, b.Name)
		}
		return out
	}

	t.Run("price exact match", func(t *testing.T) {
		price := decimal.RequireFromString("55.00")
		books, err := repo.ListBooks(ctx, catalog.BookFilter{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, []string{"Test book 2", "Test book Author 1"}, names(books))
	})

	t.Run("search matches name or author case-insensitively", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, catalog.BookFilter{Search: "author 1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Test book 1", "Test book Author 1"}, names(books))
	})

	t.Run("every search term must match name or author", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, catalog.BookFilter{Search: "  Tolstoy   war "})
		require.NoError(t, err)
		assert.Equal(t, []string{"War and Peace"}, names(books))

		books, err = repo.ListBooks(ctx, catalog.BookFilter{Search: "Tolstoy Solaris"})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, catalog.BookFilter{Search: "%_"})
		require.NoError(t, err)
		assert.Equal(t, []string{"100%_sure"}, names(books))
	})
}

func TestRepository_UpdateBook_LeavesOwnerAndRating(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	owner := &entities.User{Username: "owner"}
	require.NoError(t, db.Create(owner).Error)
	book := &entities.Book{Name: "Old", Price: decimal.NewFromInt(1), Author: "A", OwnerID: &owner.ID}
	require.NoError(t, repo.CreateBook(ctx, book))
	require.NoError(t, repo.SetBookRating(ctx, book.ID, decimal.NewNullDecimal(decimal.NewFromInt(4))))

	update := &entities.Book{ID: book.ID, Name: "New", Price: decimal.RequireFromString("9.99"), Author: "B"}
	require.NoError(t, repo.UpdateBook(ctx, update))

	loaded, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", loaded.Name)
	assert.Equal(t, "9.99", loaded.Price.StringFixed(2))
	require.NotNil(t, loaded.OwnerID)
	assert.Equal(t, owner.ID, *loaded.OwnerID)
	assert.Equal(t, "4.00", loaded.Rating.Decimal.StringFixed(2))
}

func TestRepository_DeleteBook(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	user := &entities.User{Username: "reader"}
	require.NoError(t, db.Create(user).Error)
	book := createBook(t, repo, "Doomed", "1", "A")
	require.NoError(t, db.Create(&entities.UserBookRelation{UserID: user.ID, BookID: book.ID, Like: true}).Error)

	require.NoError(t, repo.DeleteBook(ctx, book.ID))

	var relations int64
	db.Model(&entities.UserBookRelation{}).Count(&relations)
	assert.Zero(t, relations)

	err := repo.DeleteBook(ctx, book.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepository_SetBookRating(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()
	book := createBook(t, repo, "Rated", "1", "A")

	require.NoError(t, repo.SetBookRating(ctx, book.ID, decimal.NewNullDecimal(decimal.RequireFromString("3.33"))))
	loaded, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.33", loaded.Rating.Decimal.StringFixed(2))

	require.NoError(t, repo.SetBookRating(ctx, book.ID, decimal.NullDecimal{}))
	loaded, err = repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Rating.Valid)

	err = repo.SetBookRating(ctx, 999, decimal.NullDecimal{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepository_ListBookIDs(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	first := createBook(t, repo, "One", "1", "A")
	second := createBook(t, repo, "Two", "2", "B")

	ids, err := repo.ListBookIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID, second.ID}, ids)

	exists, err := repo.BookExists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.BookExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)
}
