package handler

import "shift-swap/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Shift  *ShiftHandler
	Swap   *SwapHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Shift:  NewShiftHandler(svc.Shift, svc.Cleanup),
		Swap:   NewSwapHandler(svc.Swap, svc.Cleanup),
		Export: NewExportHandler(svc.Export),
	}
}
