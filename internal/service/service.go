package service

import (
	"go.uber.org/zap"

	"shift-swap/backend/config"
	"shift-swap/backend/internal/repository"
	"shift-swap/backend/internal/rule"
	"shift-swap/backend/pkg/jwt"
	"shift-swap/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Shift   ShiftService
	Swap    SwapService
	Cleanup CleanupService
	Export  ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	policy *rule.Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Shift:   NewShiftService(repo, policy, logger),
		Swap:    NewSwapService(repo, policy, logger),
		Cleanup: NewCleanupService(repo, policy, cfg.Swap.SweepInterval, logger),
		Export:  NewExportService(repo, policy, logger),
	}
}
