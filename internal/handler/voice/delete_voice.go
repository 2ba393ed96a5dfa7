package voice

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/service"
)

// DeleteVoice 删除声音样本
// @Summary      删除声音样本
// @Description  删除自己克隆的声音
// @Tags         声音
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "声音ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/voices/{id} [delete]
func (h *Handler) DeleteVoice(c *gin.Context) {
	voiceID := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.voiceService.Delete(ctx, voiceID, userID); err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		switch {
		case errors.Is(err, service.ErrVoiceNotFound):
			code = http.StatusNotFound
			errorCode = 40402
		case errors.Is(err, service.ErrStoryForbidden):
			code = http.StatusForbidden
			errorCode = 40301
		}
		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}
