package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shift-swap/backend/internal/model"
	pkgerrors "shift-swap/backend/pkg/errors"
)

// SwapRequestRepository 换班请求数据访问接口
type SwapRequestRepository interface {
	// Create 持久化新请求；激活请求唯一索引冲突时返回 pkg/errors.ErrUniqueViolation
	Create(ctx context.Context, req *model.SwapRequest) error
	// GetActiveByID 查询激活请求并预载其持有班次
	GetActiveByID(ctx context.Context, id string) (*model.SwapRequest, error)
	// GetActiveByShiftID 查询某班次上的激活请求
	GetActiveByShiftID(ctx context.Context, shiftID string) (*model.SwapRequest, error)
	// ListActiveForBrowsing 浏览他人请求：排除 userID 自己的，预载请求人、
	// 持有班次与激活意向（意向仅含 id 与用户 id，供计数与"我是否已表态"标注）
	ListActiveForBrowsing(ctx context.Context, userID string) ([]model.SwapRequest, error)
	// ListActiveByRequester 本人请求：预载持有班次与激活意向全量明细
	ListActiveByRequester(ctx context.Context, userID string) ([]model.SwapRequest, error)
	// DeactivateWithInterests 同一事务内停用请求及其全部意向，
	// 不允许出现"请求已停用而意向仍激活"的可观测中间态
	DeactivateWithInterests(ctx context.Context, requestID string) error
}

type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository 实现
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) Create(ctx context.Context, req *model.SwapRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrUniqueViolation
	}
	return err
}

func (r *swapRequestRepo) GetActiveByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("HaveShift").
		Where("swap_request_id = ? AND is_active = ?", id, true).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) GetActiveByShiftID(ctx context.Context, shiftID string) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := r.db.WithContext(ctx).
		Where("have_shift_id = ? AND is_active = ?", shiftID, true).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) ListActiveForBrowsing(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("HaveShift").
		Preload("Interests", "is_active = ?", true).
		Where("is_active = ? AND requester_user_id != ?", true, userID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *swapRequestRepo) ListActiveByRequester(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("HaveShift").
		Preload("Interests", "is_active = ?", true).
		Preload("Interests.InterestedUser").
		Preload("Interests.OfferedShift").
		Where("is_active = ? AND requester_user_id = ?", true, userID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *swapRequestRepo) DeactivateWithInterests(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.SwapRequest{}).
			Where("swap_request_id = ?", requestID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Interest{}).
			Where("swap_request_id = ?", requestID).
			Update("is_active", false).Error
	})
}
