package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookstore/internal/services"
	"bookstore/internal/storage"
)

func setupCatalog(t *testing.T) (*gin.Engine, *services.BookService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&storage.Book{}, &storage.User{}, &storage.LogRecord{}))

	bookSvc := services.NewBookService(db)
	logSvc := services.NewLogService(db)

	r := gin.New()
	NewCatalog(bookSvc, logSvc).RegisterRoutes(r)
	return r, bookSvc
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListBooksEmpty(t *testing.T) {
	r, _ := setupCatalog(t)
	w := doJSON(t, r, "GET", "/books", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestCreateThenGetBook(t *testing.T) {
	r, svc := setupCatalog(t)

	w := doJSON(t, r, "POST", "/books", `{"title":"Go","author":"A","stock":5}`)
	require.Equal(t, 201, w.Code)
	assert.Contains(t, w.Body.String(), "Book added successfully")

	books, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)

	w = doJSON(t, r, "GET", "/books/"+strconv.FormatUint(books[0].ID, 10), "")
	require.Equal(t, 200, w.Code)
	var got storage.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, "A", got.Author)
	assert.Equal(t, int64(5), got.Stock)
}

func TestCreateBookMissingFields(t *testing.T) {
	r, svc := setupCatalog(t)

	for _, body := range []string{
		`{"author":"A","stock":5}`,
		`{"title":"Go","stock":5}`,
		`{"title":"Go","author":"A"}`,
		`{}`,
		`not json`,
	} {
		w := doJSON(t, r, "POST", "/books", body)
		assert.Equal(t, 400, w.Code, "body: %s", body)
	}

	books, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 0)
}

func TestGetBookNotFound(t *testing.T) {
	r, _ := setupCatalog(t)
	w := doJSON(t, r, "GET", "/books/42", "")
	require.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "Book not found")
}

func TestGetBookBadID(t *testing.T) {
	r, _ := setupCatalog(t)
	w := doJSON(t, r, "GET", "/books/abc", "")
	assert.Equal(t, 400, w.Code)
}

func TestUpdateBook(t *testing.T) {
	r, svc := setupCatalog(t)
	b, err := svc.Create(context.Background(), "Go", "A", 5)
	require.NoError(t, err)

	id := strconv.FormatUint(b.ID, 10)
	w := doJSON(t, r, "PUT", "/books/"+id, `{"title":"Go 2","author":"B","stock":9}`)
	require.Equal(t, 200, w.Code)

	got, err := svc.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 2", got.Title)
	assert.Equal(t, "B", got.Author)
	assert.Equal(t, int64(9), got.Stock)

	// 未命中任何行
	w = doJSON(t, r, "PUT", "/books/999", `{"title":"x","author":"y","stock":0}`)
	assert.Equal(t, 404, w.Code)

	// 字段缺失
	w = doJSON(t, r, "PUT", "/books/"+id, `{"title":"only"}`)
	assert.Equal(t, 400, w.Code)
}

func TestDeleteBookThenGet(t *testing.T) {
	r, svc := setupCatalog(t)
	b, err := svc.Create(context.Background(), "Go", "A", 5)
	require.NoError(t, err)

	id := strconv.FormatUint(b.ID, 10)
	w := doJSON(t, r, "DELETE", "/books/"+id, "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Book deleted successfully")

	w = doJSON(t, r, "GET", "/books/"+id, "")
	assert.Equal(t, 404, w.Code)

	w = doJSON(t, r, "DELETE", "/books/"+id, "")
	assert.Equal(t, 404, w.Code)
}

func TestBooksByAuthor(t *testing.T) {
	r, svc := setupCatalog(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "Go", "Alan", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Rust", "Bea", 2)
	require.NoError(t, err)

	w := doJSON(t, r, "GET", "/books/author/Alan", "")
	require.Equal(t, 200, w.Code)
	var books []storage.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Go", books[0].Title)

	w = doJSON(t, r, "GET", "/books/author/Carol", "")
	assert.Equal(t, 404, w.Code)
}

func TestBooksByNameSubstring(t *testing.T) {
	r, svc := setupCatalog(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "The Go Programming Language", "A", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Learning Rust", "B", 2)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Python Crash Course", "C", 3)
	require.NoError(t, err)

	// 子串只命中一条时恰好返回那一条
	w := doJSON(t, r, "GET", "/books/name/Rust", "")
	require.Equal(t, 200, w.Code)
	var books []storage.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Learning Rust", books[0].Title)

	// 无命中按契约返回 404
	w = doJSON(t, r, "GET", "/books/name/Haskell", "")
	assert.Equal(t, 404, w.Code)
}

func TestUpdateStockScenario(t *testing.T) {
	r, svc := setupCatalog(t)
	b, err := svc.Create(context.Background(), "Go", "A", 5)
	require.NoError(t, err)

	id := strconv.FormatUint(b.ID, 10)
	w := doJSON(t, r, "PUT", "/books/updatestock/"+id, `{"stock":10}`)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Stock updated successfully")

	got, err := svc.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, "A", got.Author)
}

func TestUpdateStockMissingField(t *testing.T) {
	r, svc := setupCatalog(t)
	b, err := svc.Create(context.Background(), "Go", "A", 5)
	require.NoError(t, err)

	id := strconv.FormatUint(b.ID, 10)
	w := doJSON(t, r, "PUT", "/books/updatestock/"+id, `{}`)
	require.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "Stock field is required")

	// 行保持不变
	got, err := svc.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)
}

func TestUpdateStockMissingBook(t *testing.T) {
	r, _ := setupCatalog(t)
	w := doJSON(t, r, "PUT", "/books/updatestock/404", `{"stock":10}`)
	require.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "Book not found")
}

func TestCatalogHealthz(t *testing.T) {
	r, _ := setupCatalog(t)
	w := doJSON(t, r, "GET", "/healthz", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
