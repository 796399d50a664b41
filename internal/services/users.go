package services

// 用户服务：注册、口令校验与账号的查询/变更。
// 明文口令只在内存中短暂存在，落库前一律经 bcrypt 哈希，也不会写进任何日志。

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookstore/internal/storage"
)

// ErrUserNotFound 表示按主键或邮箱未命中任何用户行。
var ErrUserNotFound = errors.New("user not found")

// ErrNoFields 表示部分更新请求中没有任何可更新字段。
var ErrNoFields = errors.New("no updatable fields")

// UserService 提供 users 表的注册、查询与变更能力。
type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

// Register 创建新账号；口令在任何写操作之前完成哈希。
// username/email 的重复由数据库唯一约束拒绝，原样向上传递为存储层错误。
func (s *UserService) Register(ctx context.Context, username, email, password string) (*storage.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &storage.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail 按登录标识（邮箱）查找用户。
func (s *UserService) FindByEmail(ctx context.Context, email string) (*storage.User, error) {
	var u storage.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserService) FindByID(ctx context.Context, id uint64) (*storage.User, error) {
	var u storage.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CheckPassword 校验明文口令与存储哈希是否匹配（bcrypt）。
func (s *UserService) CheckPassword(u *storage.User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// List 返回全部用户；序列化时哈希列由模型标签排除。
func (s *UserService) List(ctx context.Context) ([]storage.User, error) {
	users := make([]storage.User, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields 只更新请求中出现的字段（email/password），password 先重新哈希。
// 列名来自固定集合，绝不拼接调用方输入；两个字段都缺席时返回 ErrNoFields。
// 未命中任何行时返回 ErrUserNotFound。
func (s *UserService) UpdateFields(ctx context.Context, id uint64, email, password *string) error {
	updates := map[string]interface{}{}
	if email != nil {
		updates["email"] = *email
	}
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return ErrNoFields
	}
	res := s.db.WithContext(ctx).Model(&storage.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete 按 id 删除账号；由删除语句自身的影响行数区分 NotFound。
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&storage.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
