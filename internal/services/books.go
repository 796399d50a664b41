package services

// 图书服务：目录服务的全部存储操作。
// 单条语句可以上报影响行数的变更直接用 RowsAffected 区分 NotFound；
// 需要区分“不存在”与“写失败”的操作（补货、删除）由 HTTP 层先做存在性检查。

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bookstore/internal/storage"
)

// ErrBookNotFound 表示按主键或条件未命中任何图书行。
var ErrBookNotFound = errors.New("book not found")

// BookService 提供 books 表的查询与变更能力。
type BookService struct{ db *gorm.DB }

func NewBookService(db *gorm.DB) *BookService { return &BookService{db: db} }

// List 返回全部图书；空结果是合法的非错误响应。
func (s *BookService) List(ctx context.Context) ([]storage.Book, error) {
	books := make([]storage.Book, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (s *BookService) FindByID(ctx context.Context, id uint64) (*storage.Book, error) {
	var b storage.Book
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByAuthor 按作者精确匹配；是否把空结果当作错误由调用方决定。
func (s *BookService) FindByAuthor(ctx context.Context, author string) ([]storage.Book, error) {
	books := make([]storage.Book, 0)
	if err := s.db.WithContext(ctx).Where("author = ?", author).Order("id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// SearchByTitle 按书名做两侧通配的子串匹配（大小写敏感性取决于存储引擎排序规则）。
func (s *BookService) SearchByTitle(ctx context.Context, name string) ([]storage.Book, error) {
	books := make([]storage.Book, 0)
	if err := s.db.WithContext(ctx).Where("title LIKE ?", "%"+name+"%").Order("id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Create 插入一条新图书并回填系统生成的 id。
func (s *BookService) Create(ctx context.Context, title, author string, stock int64) (*storage.Book, error) {
	b := &storage.Book{Title: title, Author: author, Stock: stock}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// Update 整行改写 title/author/stock 三列；未命中任何行时返回 ErrBookNotFound。
func (s *BookService) Update(ctx context.Context, id uint64, title, author string, stock int64) error {
	res := s.db.WithContext(ctx).Model(&storage.Book{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "author": author, "stock": stock})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// UpdateStock 只改写 stock 列并返回影响行数；存在性检查由调用方先行完成。
func (s *BookService) UpdateStock(ctx context.Context, id uint64, stock int64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&storage.Book{}).Where("id = ?", id).
		Update("stock", stock)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Delete 按 id 删除；删除是即时且不可恢复的（无软删除）。
func (s *BookService) Delete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&storage.Book{}).Error
}
