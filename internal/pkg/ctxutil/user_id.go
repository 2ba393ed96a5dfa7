package ctxutil

import "context"

// ctxKey 私有类型，避免与其他包的 context key 冲突
type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
)

// WithUserID 将 userID 写入 context，由认证中间件在解析 JWT 成功后调用
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID 从 context 中读取 userID，第二个返回值表示是否存在
func GetUserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithRole 将用户角色写入 context
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, roleKey, role)
}

// GetRole 从 context 中读取用户角色
func GetRole(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	role, ok := ctx.Value(roleKey).(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}
