package dto

// ── 换班模块 DTO ──

// CreateSwapRequestRequest 创建换班请求
// want_dates 仅在 want_type=DATE_LIST 时有意义且必须非空；
// time_value 仅在 time_rule≠ANY 时有意义且必须存在——组合约束由 Service 层校验。
type CreateSwapRequestRequest struct {
	HaveShiftID string   `json:"have_shift_id" binding:"required,uuid"`
	WantType    string   `json:"want_type"     binding:"required,oneof=SAME_DAY DATE_LIST"`
	WantDates   []string `json:"want_dates"    binding:"omitempty,dive,required"`
	TimeRule    string   `json:"time_rule"     binding:"required,oneof=ANY EXACT_START END_NOT_AFTER"`
	TimeValue   string   `json:"time_value"    binding:"omitempty"`
	Note        string   `json:"note"          binding:"omitempty,max=500"`
}

// RequesterResponse 浏览页展示的请求人信息
type RequesterResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// BrowseSwapRequestResponse 浏览他人换班请求的单行
// 不暴露已表态用户的身份，仅给出计数与"我是否已表态"标注。
type BrowseSwapRequestResponse struct {
	ID            string            `json:"id"`
	Requester     RequesterResponse `json:"requester"`
	HaveShift     ShiftResponse     `json:"have_shift"`
	WantType      string            `json:"want_type"`
	WantDates     []string          `json:"want_dates,omitempty"`
	TimeRule      string            `json:"time_rule"`
	TimeValue     string            `json:"time_value,omitempty"`
	Note          string            `json:"note,omitempty"`
	CreatedAt     string            `json:"created_at"`
	InterestCount int               `json:"interest_count"`
	HasMyInterest bool              `json:"has_my_interest"`
	MyInterestID  string            `json:"my_interest_id,omitempty"`
}

// InterestDetailResponse 本人请求下的意向明细（含对方身份与所提供班次）
type InterestDetailResponse struct {
	ID             string        `json:"id"`
	InterestedUser UserResponse  `json:"interested_user"`
	OfferedShift   ShiftResponse `json:"offered_shift"`
	CreatedAt      string        `json:"created_at"`
}

// MySwapRequestResponse 本人换班请求的单行（含全部激活意向明细）
type MySwapRequestResponse struct {
	ID        string                   `json:"id"`
	HaveShift ShiftResponse            `json:"have_shift"`
	WantType  string                   `json:"want_type"`
	WantDates []string                 `json:"want_dates,omitempty"`
	TimeRule  string                   `json:"time_rule"`
	TimeValue string                   `json:"time_value,omitempty"`
	Note      string                   `json:"note,omitempty"`
	CreatedAt string                   `json:"created_at"`
	Interests []InterestDetailResponse `json:"interests"`
}

// SwapRequestResponse 创建换班请求成功响应
type SwapRequestResponse struct {
	ID          string   `json:"id"`
	HaveShiftID string   `json:"have_shift_id"`
	WantType    string   `json:"want_type"`
	WantDates   []string `json:"want_dates,omitempty"`
	TimeRule    string   `json:"time_rule"`
	TimeValue   string   `json:"time_value,omitempty"`
	Note        string   `json:"note,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// ExpressInterestRequest 表达换班意向请求
type ExpressInterestRequest struct {
	SwapRequestID  string `json:"swap_request_id"  binding:"required,uuid"`
	OfferedShiftID string `json:"offered_shift_id" binding:"required,uuid"`
}

// InterestResponse 表达意向成功响应
type InterestResponse struct {
	ID             string `json:"id"`
	SwapRequestID  string `json:"swap_request_id"`
	OfferedShiftID string `json:"offered_shift_id"`
	CreatedAt      string `json:"created_at"`
}

// WithdrawInterestRequest 撤回意向的查询参数
type WithdrawInterestRequest struct {
	SwapRequestID string `form:"swap_request_id" binding:"required,uuid"`
}

// CleanupResponse 过期清理结果
type CleanupResponse struct {
	RequestsDeactivated  int64 `json:"requests_deactivated"`
	InterestsDeactivated int64 `json:"interests_deactivated"`
	ShiftsDeleted        int64 `json:"shifts_deleted"`
}
