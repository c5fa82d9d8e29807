package model

// WantType 期望换班的日期形态
const (
	WantTypeSameDay  = "SAME_DAY"  // 只换同一天的班
	WantTypeDateList = "DATE_LIST" // 换 WantDates 列表中任一天的班
)

// TimeRule 期望换班的时间约束
const (
	TimeRuleAny         = "ANY"           // 不限时间
	TimeRuleExactStart  = "EXACT_START"   // 开始时间必须等于 TimeValue
	TimeRuleEndNotAfter = "END_NOT_AFTER" // 结束时间不得晚于 TimeValue
)

// SwapRequest 换班请求表 — 对应 swap_requests
// 一条挂出的"我用这个班换"的长期要约。
// WantDates 仅在 WantType=DATE_LIST 时非空；TimeValue 仅在 TimeRule≠ANY 时非空，
// 判别字段的组合约束由 Service 层创建时校验，入库后不再出现非法组合。
// 不变量：同一 HaveShiftID 至多一条 IsActive=true 的记录（存储层部分唯一索引兜底）。
type SwapRequest struct {
	SwapRequestID   string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	HaveShiftID     string      `gorm:"type:uuid;not null"                             json:"have_shift_id"`
	RequesterUserID string      `gorm:"type:uuid;not null"                             json:"requester_user_id"`
	WantType        string      `gorm:"type:varchar(10);not null"                      json:"want_type"`
	WantDates       StringArray `gorm:"type:text[]"                                    json:"want_dates,omitempty"`
	TimeRule        string      `gorm:"type:varchar(15);not null"                      json:"time_rule"`
	TimeValue       string      `gorm:"type:varchar(5)"                                json:"time_value,omitempty"`
	Note            string      `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	IsActive        bool        `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	HaveShift *Shift     `gorm:"foreignKey:HaveShiftID;references:ShiftID"     json:"have_shift,omitempty"`
	Requester *User      `gorm:"foreignKey:RequesterUserID;references:UserID"  json:"requester,omitempty"`
	Interests []Interest `gorm:"foreignKey:SwapRequestID;references:SwapRequestID" json:"interests,omitempty"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }
