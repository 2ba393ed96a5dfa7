package playback

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/playback"
)

// SaveResponseData 保存/分享响应数据
type SaveResponseData struct {
	StoryID string `json:"story_id"` // 故事ID
}

// SaveStory 保存故事
// @Summary      保存故事
// @Description  将当前会话的故事保存为私有故事，仅播放到最后一段时可用
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id}/save [post]
func (h *Handler) SaveStory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	storyID, err := h.playbackService.Save(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, playback.ErrNotTerminal) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Code:    40901,
				Message: "故事尚未播放到结尾",
			})
			return
		}
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "保存成功",
		"data":    SaveResponseData{StoryID: storyID},
	})
}

// ShareStory 分享故事
// @Summary      分享故事
// @Description  将当前会话的故事公开分享，仅播放到最后一段时可用
// @Tags         播放
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/playback/sessions/{id}/share [post]
func (h *Handler) ShareStory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	storyID, err := h.playbackService.Share(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, playback.ErrNotTerminal) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Code:    40901,
				Message: "故事尚未播放到结尾",
			})
			return
		}
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "分享成功",
		"data":    SaveResponseData{StoryID: storyID},
	})
}
