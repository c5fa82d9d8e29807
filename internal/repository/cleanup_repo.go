package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-swap/backend/internal/model"
)

// SweepResult 一次过期清理的统计
type SweepResult struct {
	RequestsDeactivated  int64 `json:"requests_deactivated"`
	InterestsDeactivated int64 `json:"interests_deactivated"`
	ShiftsDeleted        int64 `json:"shifts_deleted"`
}

// CleanupRepository 过期数据清理接口
type CleanupRepository interface {
	// SweepExpired 清理日期早于 before 的班次及其附属数据。
	// 单事务内按固定顺序执行：
	//  1. 停用持有班次已过期的换班请求；
	//  2. 停用这些请求下的意向；
	//  3. 删除过期班次行（外键 ON DELETE CASCADE 移除残余引用）。
	// 先停用后删除：任何在事务提交后检视历史状态的读者
	// 都能看到附属行已被标记停用，而不是凭空消失。
	SweepExpired(ctx context.Context, before string) (*SweepResult, error)
}

type cleanupRepo struct {
	db *gorm.DB
}

// NewCleanupRepo 创建 CleanupRepository 实现
func NewCleanupRepo(db *gorm.DB) CleanupRepository {
	return &cleanupRepo{db: db}
}

func (r *cleanupRepo) SweepExpired(ctx context.Context, before string) (*SweepResult, error) {
	result := &SweepResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expiredShifts := tx.Model(&model.Shift{}).
			Select("shift_id").
			Where("shift_date < ?", before)

		// 1. 停用持有班次已过期的请求
		res := tx.Model(&model.SwapRequest{}).
			Where("is_active = ? AND have_shift_id IN (?)", true, expiredShifts).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		result.RequestsDeactivated = res.RowsAffected

		// 2. 停用这些请求下的意向（含第 1 步刚停用的请求）
		expiredRequests := tx.Model(&model.SwapRequest{}).
			Select("swap_request_id").
			Where("have_shift_id IN (?)", tx.Model(&model.Shift{}).
				Select("shift_id").
				Where("shift_date < ?", before))
		res = tx.Model(&model.Interest{}).
			Where("is_active = ? AND swap_request_id IN (?)", true, expiredRequests).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		result.InterestsDeactivated = res.RowsAffected

		// 3. 删除过期班次
		res = tx.Where("shift_date < ?", before).Delete(&model.Shift{})
		if res.Error != nil {
			return res.Error
		}
		result.ShiftsDeleted = res.RowsAffected

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
