package story

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

// StoryInfo 故事摘要（列表用，不含正文）
type StoryInfo struct {
	ID        string `json:"id"`         // 故事ID
	Title     string `json:"title"`      // 标题
	IsPublic  bool   `json:"is_public"`  // 是否公开
	CreatedAt string `json:"created_at"` // 创建时间
}

// toStoryInfo 将Story实体转换为摘要
func toStoryInfo(st *story.Story) StoryInfo {
	return StoryInfo{
		ID:        st.ID,
		Title:     st.Title,
		IsPublic:  st.IsPublic,
		CreatedAt: st.CreatedAt.Format(time.RFC3339),
	}
}

// currentUserID 从context取出认证中间件注入的用户ID
// 取不到说明中间件缺失或配置错误，直接返回401
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
