package services

// 令牌服务：登录成功后签发不透明令牌并写入 Redis（key=token:<uuid>，值为用户 id）。
// 令牌不携带任何声明，也没有任何接口消费它——真实的会话/JWT 语义是明确留白，
// 这里只保证“登录成功响应里有 token 字段”这一对外契约。

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// TokenStore 抽象令牌写入所需的最小 Redis 能力，便于测试注入内存实现。
type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// TokenService 签发登录令牌。
type TokenService struct {
	store TokenStore
	ttl   time.Duration
}

func NewTokenService(store TokenStore, ttl time.Duration) *TokenService {
	return &TokenService{store: store, ttl: ttl}
}

// Issue 为指定用户生成一个不透明令牌并按 TTL 写入存储。
func (s *TokenService) Issue(ctx context.Context, userID uint64) (string, error) {
	tok := uuid.NewString()
	key := fmt.Sprintf("token:%s", tok)
	if err := s.store.Set(ctx, key, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return tok, nil
}
