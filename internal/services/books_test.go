package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstore/internal/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&storage.Book{}, &storage.User{}, &storage.LogRecord{}))
	return db
}

func TestBookCreateThenFind(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	b, err := svc.Create(ctx, "Go", "A", 5)
	require.NoError(t, err)
	require.NotZero(t, b.ID)

	got, err := svc.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, "A", got.Author)
	assert.Equal(t, int64(5), got.Stock)
}

func TestBookFindByIDMissing(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	_, err := svc.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookList(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	// 空目录返回空切片而非 nil
	books, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Len(t, books, 0)

	_, err = svc.Create(ctx, "Go", "A", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Rust", "B", 2)
	require.NoError(t, err)

	books, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBookFindByAuthorExactMatch(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "Go", "Alan", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "More Go", "Alan", 2)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Rust", "Al", 3)
	require.NoError(t, err)

	books, err := svc.FindByAuthor(ctx, "Alan")
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// 前缀不算精确匹配
	books, err = svc.FindByAuthor(ctx, "Ala")
	require.NoError(t, err)
	assert.Len(t, books, 0)
}

func TestBookSearchByTitleSubstring(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "The Go Programming Language", "A", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Learning Rust", "B", 2)
	require.NoError(t, err)

	books, err := svc.SearchByTitle(ctx, "Programming")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Go Programming Language", books[0].Title)

	books, err = svc.SearchByTitle(ctx, "Haskell")
	require.NoError(t, err)
	assert.Len(t, books, 0)
}

func TestBookUpdateRewritesAllColumns(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	b, err := svc.Create(ctx, "Go", "A", 5)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, b.ID, "Go 2", "B", 7))

	got, err := svc.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 2", got.Title)
	assert.Equal(t, "B", got.Author)
	assert.Equal(t, int64(7), got.Stock)
}

func TestBookUpdateMissing(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	err := svc.Update(context.Background(), 99, "x", "y", 0)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookUpdateStockOnlyTouchesStock(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	b, err := svc.Create(ctx, "Go", "A", 5)
	require.NoError(t, err)

	rows, err := svc.UpdateStock(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := svc.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, "A", got.Author)
}

func TestBookUpdateStockMissingRow(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	rows, err := svc.UpdateStock(context.Background(), 77, 10)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestBookDelete(t *testing.T) {
	svc := NewBookService(setupTestDB(t))
	ctx := context.Background()

	b, err := svc.Create(ctx, "Go", "A", 5)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))

	_, err = svc.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}
