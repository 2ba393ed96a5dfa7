package playback

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSession 获取会话状态
// @Summary      获取会话状态
// @Description  获取播放会话的当前状态快照，客户端按快照镜像播放
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.playbackService.GetState(c.Param("id"), userID)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    state,
	})
}
