package playback

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CloseSession 关闭播放会话
// @Summary      关闭播放会话
// @Description  关闭会话并释放资源，两个声道停止，待触发的自动推进被取消
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id} [delete]
func (h *Handler) CloseSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.playbackService.CloseSession(c.Param("id"), userID); err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "会话已关闭",
	})
}
