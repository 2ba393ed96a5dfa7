package story

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListStoriesResponseData 故事列表响应数据
type ListStoriesResponseData struct {
	Stories  []StoryInfo `json:"stories"`   // 故事列表
	Total    int64       `json:"total"`     // 总数
	Page     int64       `json:"page"`      // 当前页
	PageSize int64       `json:"page_size"` // 每页数量
}

// ListMyStories 获取我的故事列表
// @Summary      获取我的故事列表
// @Description  分页获取当前用户保存过的故事
// @Tags         故事
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "页码，默认1"
// @Param        page_size  query     int  false  "每页数量，默认20"
// @Success      200        {object}  map[string]interface{}
// @Failure      500        {object}  ErrorResponse
// @Router       /api/v1/stories [get]
func (h *Handler) ListMyStories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)

	ctx := c.Request.Context()
	stories, total, err := h.storyService.ListMine(ctx, userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询故事列表失败",
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
		"data": ListStoriesResponseData{
			Stories:  infos,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		},
	})
}
