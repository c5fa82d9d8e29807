package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shift-swap/backend/internal/model"
	pkgerrors "shift-swap/backend/pkg/errors"
)

// InterestRepository 换班意向数据访问接口
type InterestRepository interface {
	// Create 持久化新意向；激活意向唯一索引冲突时返回 pkg/errors.ErrUniqueViolation
	Create(ctx context.Context, interest *model.Interest) error
	// DeactivateByRequestAndUser 停用该用户在该请求下的激活意向，返回受影响行数
	DeactivateByRequestAndUser(ctx context.Context, requestID, userID string) (int64, error)
}

type interestRepo struct {
	db *gorm.DB
}

// NewInterestRepo 创建 InterestRepository 实现
func NewInterestRepo(db *gorm.DB) InterestRepository {
	return &interestRepo{db: db}
}

func (r *interestRepo) Create(ctx context.Context, interest *model.Interest) error {
	err := r.db.WithContext(ctx).Create(interest).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrUniqueViolation
	}
	return err
}

func (r *interestRepo) DeactivateByRequestAndUser(ctx context.Context, requestID, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Interest{}).
		Where("swap_request_id = ? AND interested_user_id = ? AND is_active = ?", requestID, userID, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
