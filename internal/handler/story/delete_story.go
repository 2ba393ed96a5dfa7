package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/service"
)

// DeleteStory 删除故事
// @Summary      删除故事
// @Description  删除自己保存的故事
// @Tags         故事
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/stories/{id} [delete]
func (h *Handler) DeleteStory(c *gin.Context) {
	storyID := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.storyService.Delete(ctx, storyID, userID); err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		switch {
		case errors.Is(err, service.ErrStoryNotFound):
			code = http.StatusNotFound
			errorCode = 40401
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
