package models

import (
	"time"
)

// User 用户基础信息表
type User struct {
	BaseModel
	Username    string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;size:100" json:"email"`
	Status      string     `gorm:"size:20;default:'active'" json:"status"` // active, frozen, banned
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `gorm:"size:50" json:"last_login_ip"`

	// 关联（查询时使用 Preload 加载）
	Characters []Character `gorm:"foreignKey:UserID" json:"characters,omitempty"`
}

// UserAuth 用户认证信息表
type UserAuth struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Password      string     `gorm:"size:255;not null" json:"-"` // argon2id哈希
	LoginAttempts int        `gorm:"default:0" json:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 指定User表名
func (User) TableName() string {
	return "users"
}

// TableName 指定UserAuth表名
func (UserAuth) TableName() string {
	return "user_auths"
}
