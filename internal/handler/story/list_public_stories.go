package story

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListPublicStories 获取公开故事列表
// @Summary      获取公开故事列表
// @Description  获取所有用户公开分享的故事，结果短暂缓存
// @Tags         故事
// @Produce      json
// @Param        limit  query     int  false  "数量上限，默认50"
// @Success      200    {object}  map[string]interface{}
// @Failure      500    {object}  ErrorResponse
// @Router       /api/v1/stories/public [get]
func (h *Handler) ListPublicStories(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	ctx := c.Request.Context()
	stories, err := h.storyService.ListPublic(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询公开故事失败",
			Detail:  err.Error(),
		})
		return
	}

	infos := make([]StoryInfo, 0, len(stories))
	for _, st := range stories {
		infos = append(infos, toStoryInfo(st))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"stories": infos,
		},
	})
}
