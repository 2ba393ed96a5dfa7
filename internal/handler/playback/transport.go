package playback

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Advance 前进到下一段
// @Summary      前进到下一段
// @Description  手动切换到下一个段落，已在最后一段时无变化
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id}/advance [post]
func (h *Handler) Advance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.playbackService.Advance(c.Param("id"), userID)
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

// Retreat 回退到上一段
// @Summary      回退到上一段
// @Description  手动切换到上一个段落，已在第一段时无变化
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id}/retreat [post]
func (h *Handler) Retreat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.playbackService.Retreat(c.Param("id"), userID)
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

// Toggle 切换播放/暂停
// @Summary      切换播放/暂停
// @Description  暂停会停下两个声道并取消自动推进，继续播放会重新计满一个周期
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id}/toggle [post]
func (h *Handler) Toggle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.playbackService.Toggle(c.Param("id"), userID)
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
