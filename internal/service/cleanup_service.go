package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shift-swap/backend/internal/dto"
	"shift-swap/backend/internal/repository"
	"shift-swap/backend/internal/rule"
)

// CleanupService 过期数据清理接口
type CleanupService interface {
	// SweepNow 立即执行一次清理，忽略间隔限制
	SweepNow(ctx context.Context) (*dto.CleanupResponse, error)
	// SweepIfDue 距上次清理超过最小间隔时执行一次清理，
	// 否则直接返回 nil。由读路径惰性触发。
	SweepIfDue(ctx context.Context) (*dto.CleanupResponse, error)
}

type cleanupService struct {
	repo     *repository.Repository
	policy   *rule.Policy
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastRunAt time.Time
}

// NewCleanupService 创建 CleanupService 实现
func NewCleanupService(repo *repository.Repository, policy *rule.Policy, interval time.Duration, logger *zap.Logger) CleanupService {
	return &cleanupService{
		repo:     repo,
		policy:   policy,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *cleanupService) SweepNow(ctx context.Context) (*dto.CleanupResponse, error) {
	return s.sweep(ctx)
}

func (s *cleanupService) SweepIfDue(ctx context.Context) (*dto.CleanupResponse, error) {
	s.mu.Lock()
	if !s.lastRunAt.IsZero() && s.now().Sub(s.lastRunAt) < s.interval {
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	return s.sweep(ctx)
}

// sweep 以参考时区的"今天"为界清理过期数据。
// 清理本身幂等：没有过期行时是安全的空操作。
func (s *cleanupService) sweep(ctx context.Context) (*dto.CleanupResponse, error) {
	today := s.policy.Today(s.now())

	result, err := s.repo.Cleanup.SweepExpired(ctx, today)
	if err != nil {
		s.logger.Error("过期清理失败", zap.String("before", today), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.lastRunAt = s.now()
	s.mu.Unlock()

	if result.RequestsDeactivated > 0 || result.InterestsDeactivated > 0 || result.ShiftsDeleted > 0 {
		s.logger.Info("过期清理完成",
			zap.String("before", today),
			zap.Int64("requests_deactivated", result.RequestsDeactivated),
			zap.Int64("interests_deactivated", result.InterestsDeactivated),
			zap.Int64("shifts_deleted", result.ShiftsDeleted))
	}

	return &dto.CleanupResponse{
		RequestsDeactivated:  result.RequestsDeactivated,
		InterestsDeactivated: result.InterestsDeactivated,
		ShiftsDeleted:        result.ShiftsDeleted,
	}, nil
}
