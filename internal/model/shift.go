package model

// Shift 班次表 — 对应 shifts
// 日期与时间为固定参考时区下的规范字符串：Date=YYYY-MM-DD，Start/End=HH:MM。
// 零填充的 ISO 字符串按字典序比较即为时间序，全部比较逻辑依赖这一点。
type Shift struct {
	ShiftID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	UserID        string `gorm:"type:uuid;not null"                             json:"user_id"`
	Date          string `gorm:"column:shift_date;type:varchar(10);not null"    json:"date"`
	Start         string `gorm:"column:start_time;type:varchar(5);not null"     json:"start"`
	End           string `gorm:"column:end_time;type:varchar(5);not null"       json:"end"`
	DurationHours int    `gorm:"not null"                                       json:"duration_hours"`
	BaseModel

	// 关联
	Owner        *User         `gorm:"foreignKey:UserID;references:UserID"       json:"owner,omitempty"`
	SwapRequests []SwapRequest `gorm:"foreignKey:HaveShiftID;references:ShiftID" json:"swap_requests,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }
