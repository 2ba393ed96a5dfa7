package playback

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/pkg/ctxutil"
	"lullaby/internal/service"
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// currentUserID 从context取出认证中间件注入的用户ID
func currentUserID(c *gin.Context) (string, bool) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
	}
	return userID, ok
}

// writeSessionError 会话查找类错误的统一响应
func writeSessionError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	errorCode := 50001
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		code = http.StatusNotFound
		errorCode = 40403
	case errors.Is(err, service.ErrSessionForbidden):
		code = http.StatusForbidden
		errorCode = 40301
	}
	c.JSON(code, ErrorResponse{
		Code:    errorCode,
		Message: err.Error(),
	})
}
