package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Invalidator 下游缓存失效通知。
// 变更操作完成后调用；失效是惰性的（删除缓存键，下次读取时重算），
// 通知本身尽力而为，失败只记日志不影响主流程。
type Invalidator interface {
	Invalidate(ctx context.Context, projectID string)
}

const progressCacheKey = "progress:"

// RedisInvalidator 基于Redis的缓存失效
type RedisInvalidator struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisInvalidator(rdb *redis.Client, logger *zap.Logger) *RedisInvalidator {
	return &RedisInvalidator{rdb: rdb, logger: logger}
}

func (i *RedisInvalidator) Invalidate(ctx context.Context, projectID string) {
	if err := i.rdb.Del(ctx, progressCacheKey+projectID).Err(); err != nil {
		i.logger.Warn("invalidate progress cache failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}
}

// NoopInvalidator 空实现（测试用）
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(ctx context.Context, projectID string) {}
