package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/metrics"
	"bookstore/internal/services"
)

// CatalogHandler 聚合目录服务的依赖并注册全部图书路由。
type CatalogHandler struct {
	bookSvc *services.BookService
	logSvc  *services.LogService
}

// NewCatalog 构造目录服务的 HTTP 处理器。
func NewCatalog(bs *services.BookService, ls *services.LogService) *CatalogHandler {
	return &CatalogHandler{bookSvc: bs, logSvc: ls}
}

// RegisterRoutes 在 Gin 路由上挂载目录服务的全部端点。
func (h *CatalogHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/books", h.listBooks)
	r.POST("/books", h.createBook)
	r.GET("/books/:id", h.getBook)
	r.PUT("/books/:id", h.updateBook)
	r.DELETE("/books/:id", h.deleteBook)
	r.GET("/books/author/:author", h.booksByAuthor)
	r.GET("/books/name/:name", h.booksByName)
	r.PUT("/books/updatestock/:id", h.updateStock)

	// 运维端点
	r.GET("/metrics", metrics.Exposer())
	r.GET("/healthz", h.healthz)
}

// @Summary      健康检查
// @Tags         ops
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /healthz [get]
func (h *CatalogHandler) healthz(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) }

// @Summary      图书列表
// @Description  返回全部图书；空目录返回空数组而非错误
// @Tags         books
// @Produce      json
// @Success      200 {array} storage.Book
// @Failure      500 {object} map[string]string
// @Router       /books [get]
func (h *CatalogHandler) listBooks(c *gin.Context) {
	books, err := h.bookSvc.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, books)
}

// @Summary      新增图书
// @Description  title/author/stock 三个字段均为必填，缺失即 400
// @Tags         books
// @Accept       json
// @Produce      json
// @Success      201 {object} map[string]string
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /books [post]
func (h *CatalogHandler) createBook(c *gin.Context) {
	// 指针字段区分“字段缺失”与“零值”，插入前显式做存在性校验
	var req struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
		Stock  *int64  `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.Author == nil || req.Stock == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, author and stock are required"})
		return
	}
	b, err := h.bookSvc.Create(c, *req.Title, *req.Author, *req.Stock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	metrics.BooksCreated.Inc()
	h.logSvc.Write(c, "INFO", "BOOK_CREATED", nil, b.Title, c.ClientIP(), requestID(c))
	c.JSON(http.StatusCreated, gin.H{"message": "Book added successfully"})
}

// @Summary      按 id 查询图书
// @Tags         books
// @Produce      json
// @Param        id path int true "图书 id"
// @Success      200 {object} storage.Book
// @Failure      404 {object} map[string]string
// @Router       /books/{id} [get]
func (h *CatalogHandler) getBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book id"})
		return
	}
	b, err := h.bookSvc.FindByID(c, id)
	if err != nil {
		if err == services.ErrBookNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary      整行更新图书
// @Description  title/author/stock 三列总是整体改写；按影响行数判断 404
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id path int true "图书 id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /books/{id} [put]
func (h *CatalogHandler) updateBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book id"})
		return
	}
	var req struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
		Stock  *int64  `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.Author == nil || req.Stock == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, author and stock are required"})
		return
	}
	if err := h.bookSvc.Update(c, id, *req.Title, *req.Author, *req.Stock); err != nil {
		if err == services.ErrBookNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully"})
}

// @Summary      删除图书
// @Description  先做存在性检查再删除，保证 404 语义准确
// @Tags         books
// @Produce      json
// @Param        id path int true "图书 id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /books/{id} [delete]
func (h *CatalogHandler) deleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book id"})
		return
	}
	if _, err := h.bookSvc.FindByID(c, id); err != nil {
		if err == services.ErrBookNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := h.bookSvc.Delete(c, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	metrics.BooksDeleted.Inc()
	h.logSvc.Write(c, "INFO", "BOOK_DELETED", nil, c.Param("id"), c.ClientIP(), requestID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

// @Summary      按作者精确查询
// @Tags         books
// @Produce      json
// @Param        author path string true "作者"
// @Success      200 {array} storage.Book
// @Failure      404 {object} map[string]string
// @Router       /books/author/{author} [get]
func (h *CatalogHandler) booksByAuthor(c *gin.Context) {
	books, err := h.bookSvc.FindByAuthor(c, c.Param("author"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	// 空结果按契约视为 NotFound
	if len(books) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No books found for this author"})
		return
	}
	c.JSON(http.StatusOK, books)
}

// @Summary      按书名子串查询
// @Description  两侧通配的 LIKE 匹配；大小写敏感性取决于存储引擎
// @Tags         books
// @Produce      json
// @Param        name path string true "书名子串"
// @Success      200 {array} storage.Book
// @Failure      404 {object} map[string]string
// @Router       /books/name/{name} [get]
func (h *CatalogHandler) booksByName(c *gin.Context) {
	books, err := h.bookSvc.SearchByTitle(c, c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if len(books) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No books found with this name"})
		return
	}
	c.JSON(http.StatusOK, books)
}

// @Summary      补货（只更新库存）
// @Description  先按 id 做存在性检查；检查通过后写库存仍报 0 行视为并发删除，回 500
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id path int true "图书 id"
// @Success      200 {object} map[string]string
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /books/updatestock/{id} [put]
func (h *CatalogHandler) updateStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book id"})
		return
	}
	// 存在性检查先行：不存在时不碰任何写路径
	if _, err := h.bookSvc.FindByID(c, id); err != nil {
		if err == services.ErrBookNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	var req struct {
		Stock *int64 `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Stock == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock field is required"})
		return
	}
	rows, err := h.bookSvc.UpdateStock(c, id, *req.Stock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	// 存在性检查已通过仍然 0 行：读与写之间行被并发删除
	if rows == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated successfully"})
}
