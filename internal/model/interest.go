package model

// Interest 换班意向表 — 对应 interests
// 某用户用自己的一个班次对某条换班请求给出的具体反要约。
// 不变量：同一 (SwapRequestID, InterestedUserID) 至多一条 IsActive=true 的记录；
// InterestedUserID 必须不等于所属请求的 RequesterUserID。
type Interest struct {
	InterestID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"interest_id"`
	SwapRequestID    string `gorm:"type:uuid;not null"                             json:"swap_request_id"`
	InterestedUserID string `gorm:"type:uuid;not null"                             json:"interested_user_id"`
	OfferedShiftID   string `gorm:"type:uuid;not null"                             json:"offered_shift_id"`
	IsActive         bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	SwapRequest    *SwapRequest `gorm:"foreignKey:SwapRequestID;references:SwapRequestID" json:"swap_request,omitempty"`
	InterestedUser *User        `gorm:"foreignKey:InterestedUserID;references:UserID"     json:"interested_user,omitempty"`
	OfferedShift   *Shift       `gorm:"foreignKey:OfferedShiftID;references:ShiftID"      json:"offered_shift,omitempty"`
}

// TableName 指定表名
func (Interest) TableName() string { return "interests" }
