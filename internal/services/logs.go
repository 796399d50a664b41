package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookstore/internal/storage"
)

// LogService 将审计日志持久化到数据库。写入是尽力而为的，失败不影响请求结果。
type LogService struct{ db *gorm.DB }

func NewLogService(db *gorm.DB) *LogService { return &LogService{db: db} }

// Write 写入一条审计日志。
func (s *LogService) Write(ctx context.Context, level, event string, userID *uint64, desc, ip, requestID string) {
	_ = s.db.WithContext(ctx).Create(&storage.LogRecord{
		Timestamp:   time.Now(),
		Level:       level,
		Event:       event,
		UserID:      userID,
		Description: desc,
		IPAddress:   ip,
		RequestID:   requestID,
	}).Error
}

// IDPtr 辅助：取 id 的指针，便于可空的 user_id 字段。
func (s *LogService) IDPtr(id uint64) *uint64 { return &id }
