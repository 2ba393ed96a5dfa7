package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/service"
)

// GetStory 获取故事详情
// @Summary      获取故事详情
// @Description  获取故事及其完整内容，仅所有者或公开故事可见
// @Tags         故事
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/stories/{id} [get]
func (h *Handler) GetStory(c *gin.Context) {
	storyID := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	st, err := h.storyService.Get(ctx, storyID, userID)
	if err != nil {
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

	// 正文解出来一起返回，客户端不用再解析content字符串
	doc, err := h.storyService.Document(st)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50002,
			Message: "故事内容损坏",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"story":    toStoryInfo(st),
			"document": doc,
		},
	})
}
