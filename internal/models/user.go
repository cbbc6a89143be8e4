package models

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;type:varchar(50);not null;comment:用户名" json:"username"`
	Email        string    `gorm:"index;type:varchar(100);comment:邮箱" json:"email,omitempty"`
	PasswordHash string    `gorm:"type:varchar(255);comment:密码哈希" json:"-"`
	FullName     string    `gorm:"type:varchar(100);comment:全名" json:"full_name,omitempty"`
	Phone        string    `gorm:"type:varchar(20);comment:手机号" json:"phone,omitempty"`
	Status       int       `gorm:"index;default:1;not null;comment:状态: 1正常 2禁用 3删除" json:"status"`
	UserType     int       `gorm:"default:1;not null;comment:用户类型: 1普通用户 2会员 3管理员" json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联关系
	Member *Member `gorm:"foreignKey:UserID" json:"member,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// 用户状态常量
const (
	UserStatusNormal   = 1 // 正常
	UserStatusDisabled = 2 // 禁用
	UserStatusDeleted  = 3 // 删除
)

// 用户类型常量
const (
	UserTypeNormal = 1 // 普通用户
	UserTypeMember = 2 // 会员
	UserTypeAdmin  = 3 // 管理员
)

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// IsActive 账号是否可用
func (u *User) IsActive() bool {
	return u.Status == UserStatusNormal
}
