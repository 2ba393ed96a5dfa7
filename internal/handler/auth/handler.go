package auth

import (
	"lullaby/internal/service"
)

// Handler 认证处理器，承载注册、登录、刷新等端点
type Handler struct {
	authService *service.AuthService
}

// NewHandler 创建认证处理器
func NewHandler(authService *service.AuthService) *Handler {
	return &Handler{authService: authService}
}
