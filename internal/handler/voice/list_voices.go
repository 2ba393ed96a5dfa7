package voice

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListVoices 获取声音列表
// @Summary      获取声音列表
// @Description  获取当前用户可用的声音样本
// @Tags         声音
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/voices [get]
func (h *Handler) ListVoices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	voices, err := h.voiceService.List(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询声音列表失败",
			Detail:  err.Error(),
		})
		return
	}

	infos := make([]VoiceInfo, 0, len(voices))
	for _, v := range voices {
		infos = append(infos, toVoiceInfo(v, h.voiceService.SampleURL(ctx, v)))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"voices": infos,
		},
	})
}
