package auth

import (
	"time"
)

// RefreshToken 刷新令牌实体
// ID 和 UserID 均为 UUID 字符串，避免 ObjectID 转换
type RefreshToken struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // 过期时间，集合上有 TTL 索引兜底
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsExpired 判断令牌是否已过期
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}
