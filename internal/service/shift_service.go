package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-swap/backend/internal/dto"
	"shift-swap/backend/internal/model"
	"shift-swap/backend/internal/repository"
	"shift-swap/backend/internal/rule"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound         = errors.New("班次不存在或不属于当前用户")
	ErrShiftInvalidDate      = errors.New("班次日期必须在允许窗口内（不早于今天，不晚于一个月后）")
	ErrShiftInvalidTimeSlot  = errors.New("班次时间必须落在营业时间内的 15 分钟网格上，且开始早于结束")
	ErrShiftInvalidDuration  = errors.New("班次时长不在允许的取值范围内")
	ErrShiftHasActiveRequest = errors.New("班次存在激活的换班请求，请先删除该请求")
)

// ShiftService 班次业务接口
type ShiftService interface {
	// Create 录入班次；日期、时间网格、时长均按窗口策略校验，不合法即拒绝入库
	Create(ctx context.Context, req *dto.CreateShiftRequest, userID string) (*dto.ShiftResponse, error)
	// ListMine 本人班次列表（日期升序），附带是否挂有激活换班请求的标注
	ListMine(ctx context.Context, userID string) ([]dto.ShiftResponse, error)
	// Delete 删除本人班次；挂有激活换班请求时拒绝
	Delete(ctx context.Context, shiftID, userID string) error
	// ListEligibleForRequest 预筛本人班次中能满足指定换班请求的候选。
	// 与 ExpressInterest 的服务端校验共用同一资格函数，
	// 保证前端展示的选项服务端一定接受。
	ListEligibleForRequest(ctx context.Context, requestID, userID string) ([]dto.ShiftResponse, error)
}

type shiftService struct {
	repo   *repository.Repository
	policy *rule.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, policy *rule.Policy, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, policy: policy, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, userID string) (*dto.ShiftResponse, error) {
	// 校验全部在入库前完成，失败不触碰存储
	if !s.policy.WithinAllowedWindow(req.Date, s.now()) {
		return nil, ErrShiftInvalidDate
	}
	if !s.policy.ValidTimeSlot(req.Start, req.End) {
		return nil, ErrShiftInvalidTimeSlot
	}
	if !s.policy.ValidDuration(req.DurationHours) {
		return nil, ErrShiftInvalidDuration
	}

	shift := &model.Shift{
		UserID:        userID,
		Date:          req.Date,
		Start:         req.Start,
		End:           req.End,
		DurationHours: req.DurationHours,
	}

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift)
	return &resp, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *shiftService) ListMine(ctx context.Context, userID string) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询班次列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, shiftID, userID string) error {
	if _, err := s.repo.Shift.GetByOwner(ctx, shiftID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", shiftID), zap.Error(err))
		return err
	}

	// 有激活换班请求的班次不可删除
	if _, err := s.repo.SwapRequest.GetActiveByShiftID(ctx, shiftID); err == nil {
		return ErrShiftHasActiveRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询换班请求失败", zap.String("shift_id", shiftID), zap.Error(err))
		return err
	}

	if err := s.repo.Shift.Delete(ctx, shiftID); err != nil {
		s.logger.Error("删除班次失败", zap.String("shift_id", shiftID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListEligibleForRequest ──────────────────────

func (s *shiftService) ListEligibleForRequest(ctx context.Context, requestID, userID string) ([]dto.ShiftResponse, error) {
	req, err := s.repo.SwapRequest.GetActiveByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapRequestNotFound
		}
		s.logger.Error("查询换班请求失败", zap.String("swap_request_id", requestID), zap.Error(err))
		return nil, err
	}
	if req.RequesterUserID == userID {
		return nil, ErrInterestSelf
	}

	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询班次列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		if rule.Eligible(req, req.HaveShift, &shifts[i]) == rule.ViolationNone {
			result = append(result, toShiftResponse(&shifts[i]))
		}
	}
	return result, nil
}

// ── 内部辅助方法 ──

func toShiftResponse(shift *model.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:                   shift.ShiftID,
		Date:                 shift.Date,
		Start:                shift.Start,
		End:                  shift.End,
		DurationHours:        shift.DurationHours,
		HasActiveSwapRequest: len(shift.SwapRequests) > 0,
	}
}
