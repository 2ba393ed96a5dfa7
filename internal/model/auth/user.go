package auth

import (
	"time"
)

// User 用户实体
// 登录凭证为邮箱+密码，ID使用UUID格式（string），避免ObjectID转换的麻烦
type User struct {
	ID          string       `bson:"_id,omitempty" json:"id"`                    // UUID格式的ID
	Email       string       `bson:"email" json:"email"`                         // 邮箱（唯一，登录凭证）
	Password    string       `bson:"password" json:"-"`                          // 密码（加密存储，不返回）
	Role        UserRole     `bson:"role" json:"role"`                           // 角色
	Status      UserStatus   `bson:"status" json:"status"`                       // 状态
	Profile     *UserProfile `bson:"profile,omitempty" json:"profile,omitempty"` // 用户资料
	LastLoginAt *time.Time   `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// UserProfile 用户资料
type UserProfile struct {
	Nickname string `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin UserRole = "admin" // 管理员
	RoleUser  UserRole = "user"  // 普通用户
)

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive UserStatus = "active" // 激活
	UserStatusBanned UserStatus = "banned" // 禁用
)

// IsValid 检查状态是否有效
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusBanned
}

// String 返回状态字符串
func (s UserStatus) String() string {
	return string(s)
}
