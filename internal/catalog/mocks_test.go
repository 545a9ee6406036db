package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/mrlokans/bookstore/internal/entities"
)

type mockBookStore struct {
	mock.Mock
}

func (m *mockBookStore) ListBooks(ctx context.Context, filter BookFilter) ([]entities.Book, error) {
	args := m.Called(ctx, filter)
	books, _ := args.Get(0).([]entities.Book)
	return books, args.Error(1)
}

func (m *mockBookStore) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*entities.Book)
	return book, args.Error(1)
}

func (m *mockBookStore) CreateBook(ctx context.Context, book *entities.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *mockBookStore) UpdateBook(ctx context.Context, book *entities.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *mockBookStore) DeleteBook(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookStore) BookExists(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockRelationStore struct {
	mock.Mock
}

func (m *mockRelationStore) FindRelation(ctx context.Context, userID, bookID uint) (*entities.UserBookRelation, error) {
	args := m.Called(ctx, userID, bookID)
	rel, _ := args.Get(0).(*entities.UserBookRelation)
	return rel, args.Error(1)
}

func (m *mockRelationStore) CreateRelation(ctx context.Context, rel *entities.UserBookRelation) error {
	return m.Called(ctx, rel).Error(0)
}

func (m *mockRelationStore) SaveRelation(ctx context.Context, rel *entities.UserBookRelation) error {
	return m.Called(ctx, rel).Error(0)
}

type mockLikeCounter struct {
	mock.Mock
}

func (m *mockLikeCounter) CountLikes(ctx context.Context, bookIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, bookIDs)
	counts, _ := args.Get(0).(map[uint]int64)
	return counts, args.Error(1)
}

type mockRateSource struct {
	mock.Mock
}

func (m *mockRateSource) RatesForBook(ctx context.Context, bookID uint) ([]entities.Rate, error) {
	args := m.Called(ctx, bookID)
	rates, _ := args.Get(0).([]entities.Rate)
	return rates, args.Error(1)
}

type mockRatingWriter struct {
	mock.Mock
}

func (m *mockRatingWriter) SetBookRating(ctx context.Context, bookID uint, rating decimal.NullDecimal) error {
	return m.Called(ctx, bookID, rating).Error(0)
}

func (m *mockRatingWriter) ListBookIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

var (
	_ BookStore     = (*mockBookStore)(nil)
	_ RelationStore = (*mockRelationStore)(nil)
	_ LikeCounter   = (*mockLikeCounter)(nil)
	_ RateSource    = (*mockRateSource)(nil)
	_ RatingWriter  = (*mockRatingWriter)(nil)
)
