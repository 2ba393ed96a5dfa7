package voice

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lullaby/internal/model/story"
	"lullaby/internal/pkg/ctxutil"
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// VoiceInfo 声音样本信息
type VoiceInfo struct {
	VoiceID     string `json:"voice_id"`              // 声音ID
	VoiceName   string `json:"voice_name"`            // 展示名称
	Description string `json:"description,omitempty"` // 描述
	SampleURL   string `json:"sample_url,omitempty"`  // 样本试听URL（临时签名）
	CreatedAt   string `json:"created_at"`            // 创建时间
}

// toVoiceInfo 将VoiceSample实体转换为VoiceInfo
func toVoiceInfo(v *story.VoiceSample, sampleURL string) VoiceInfo {
	return VoiceInfo{
		VoiceID:     v.VoiceID,
		VoiceName:   v.VoiceName,
		Description: v.Description,
		SampleURL:   sampleURL,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
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
