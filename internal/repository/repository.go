package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User        UserRepository
	Shift       ShiftRepository
	SwapRequest SwapRequestRepository
	Interest    InterestRepository
	Cleanup     CleanupRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Shift:       NewShiftRepo(db),
		SwapRequest: NewSwapRequestRepo(db),
		Interest:    NewInterestRepo(db),
		Cleanup:     NewCleanupRepo(db),
	}
}
