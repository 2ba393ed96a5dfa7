package playback

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/playback"
	"lullaby/internal/service"
)

// CreateSessionRequest 创建播放会话请求
// 二选一：story_id 播放已保存的故事，document 播放刚生成的故事
type CreateSessionRequest struct {
	StoryID  string             `json:"story_id,omitempty"` // 已保存故事的ID
	Document *playback.Document `json:"document,omitempty"` // 内联故事文档
}

// CreateSession 创建播放会话
// @Summary      创建播放会话
// @Description  用已保存的故事或内联文档创建播放会话，会话从第一段开始自动播放
// @Tags         播放
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateSessionRequest  true  "创建请求"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/playback/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	doc := req.Document
	if req.StoryID != "" {
		st, err := h.storyService.Get(ctx, req.StoryID, userID)
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
		doc, err = h.storyService.Document(st)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    50002,
				Message: "故事内容损坏",
				Detail:  err.Error(),
			})
			return
		}
	}

	if doc == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "story_id 和 document 必须提供一个",
		})
		return
	}

	state, err := h.playbackService.CreateSession(userID, doc)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		if errors.Is(err, playback.ErrInvalidDocument) {
			code = http.StatusBadRequest
			errorCode = 40004
		}
		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: "创建播放会话失败",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "会话已创建",
		"data":    state,
	})
}
