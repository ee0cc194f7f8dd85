package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProjectProgress 项目里程碑进度汇总（下游缓存）
type ProjectProgress struct {
	ProjectID     string    `json:"project_id"`
	Total         int       `json:"total"`
	Ordered       int       `json:"ordered"`
	Received      int       `json:"received"`
	FullyReceived int       `json:"fully_received"`
	Delivered     int       `json:"delivered"`
	Installed     int       `json:"installed"`
	ComputedAt    time.Time `json:"computed_at"`
}

// ProgressService 进度汇总服务。
// 变更操作通过 Invalidator 删除缓存键，这里在下次读取时惰性重算。
type ProgressService struct {
	statusSvc *StatusService
	rdb       *redis.Client
	logger    *zap.Logger
	ttl       time.Duration
}

func NewProgressService(statusSvc *StatusService, rdb *redis.Client, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		statusSvc: statusSvc,
		rdb:       rdb,
		logger:    logger,
		ttl:       10 * time.Minute,
	}
}

// ProjectProgress 读取项目进度，优先走缓存
func (s *ProgressService) ProjectProgress(ctx context.Context, projectID string) (*ProjectProgress, error) {
	key := progressCacheKey + projectID

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var progress ProjectProgress
			if json.Unmarshal([]byte(cached), &progress) == nil {
				return &progress, nil
			}
		}
	}

	statuses, err := s.statusSvc.ListProjectStatuses(ctx, projectID)
	if err != nil {
		return nil, err
	}

	progress := &ProjectProgress{
		ProjectID:  projectID,
		Total:      len(statuses),
		ComputedAt: time.Now(),
	}
	for _, es := range statuses {
		if es.Status.Ordered {
			progress.Ordered++
		}
		if es.Status.Received {
			progress.Received++
		}
		if es.Status.FullyReceived {
			progress.FullyReceived++
		}
		if es.Status.Delivered {
			progress.Delivered++
		}
		if es.Status.Installed {
			progress.Installed++
		}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(progress); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
				s.logger.Warn("cache progress failed",
					zap.String("project_id", projectID),
					zap.Error(err),
				)
			}
		}
	}
	return progress, nil
}
