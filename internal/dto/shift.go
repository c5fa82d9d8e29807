package dto

// ── 班次模块 DTO ──

// CreateShiftRequest 录入班次请求
// 日期/时间格式与取值范围由 Service 层按窗口策略校验。
type CreateShiftRequest struct {
	Date          string `json:"date"           binding:"required"`
	Start         string `json:"start"          binding:"required"`
	End           string `json:"end"            binding:"required"`
	DurationHours int    `json:"duration_hours" binding:"required"`
}

// ShiftResponse 班次信息响应
type ShiftResponse struct {
	ID                   string `json:"id"`
	Date                 string `json:"date"`
	Start                string `json:"start"`
	End                  string `json:"end"`
	DurationHours        int    `json:"duration_hours"`
	HasActiveSwapRequest bool   `json:"has_active_swap_request"`
}
