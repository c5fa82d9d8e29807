package model

// User 用户表 — 对应 users
// 首次成功登录时自动创建；本系统不删除用户。
type User struct {
	UserID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email      string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	FullName   string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	EmployeeID string `gorm:"type:varchar(50)"                               json:"employee_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
