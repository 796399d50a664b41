package storage

import (
	"time"

	"gorm.io/gorm"
)

// 本文件定义两个服务共用的全部 GORM 模型，集中管理数据结构。
// 目录服务只读写 books 表，用户服务只读写 users 表；audit 日志两边共用。

// Book 表示目录中的一条图书记录。
// id 在行的整个生命周期内唯一且不变；title/author 不做唯一约束（允许重复）。
type Book struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Title  string `gorm:"size:255" json:"title"`
	Author string `gorm:"size:190;index" json:"author"`
	Stock  int64  `json:"stock"`
}

// User 表示一个账号。口令只以 bcrypt 哈希落库，绝不回显。
// username/email 的唯一性由数据库约束兜底，重复注册表现为存储层错误。
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"size:190;uniqueIndex" json:"username"`
	Email        string `gorm:"size:190;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255" json:"-"`
}

// LogRecord 为审计日志行（注册、登录、图书增删等关键事件）。
type LogRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Timestamp   time.Time `gorm:"index"`
	Level       string    `gorm:"size:16;index"`
	Event       string    `gorm:"size:64;index"`
	UserID      *uint64   `gorm:"index"`
	Description string    `gorm:"type:text"`
	IPAddress   string    `gorm:"size:64"`
	RequestID   string    `gorm:"size:64;index"`
}

// autoMigrate 执行数据库自动迁移。
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Book{}, &User{}, &LogRecord{})
}
