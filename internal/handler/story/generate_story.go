package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lullaby/internal/service"
)

// GenerateStoryRequest 生成故事请求
type GenerateStoryRequest struct {
	Premise string `json:"premise" binding:"required,max=500"` // 故事前提/主题（必填）
	VoiceID string `json:"voice_id,omitempty"`                 // 旁白声音ID（可选，不填则无旁白）
}

// GenerateStory 生成睡前故事
// @Summary      生成睡前故事
// @Description  根据主题生成完整的睡前故事，返回带插图与音频的故事文档。生成结果不落库，可用于创建播放会话。
// @Tags         故事
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      GenerateStoryRequest  true  "生成请求"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Router       /api/v1/stories/generate [post]
func (h *Handler) GenerateStory(c *gin.Context) {
	var req GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	if _, ok := currentUserID(c); !ok {
		return
	}

	ctx := c.Request.Context()

	// 声音ID必须是已登记的样本
	if req.VoiceID != "" {
		if _, err := h.voiceService.Get(ctx, req.VoiceID); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40003,
				Message: "声音不存在",
			})
			return
		}
	}

	doc, err := h.storyService.Generate(ctx, req.Premise, req.VoiceID)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		if errors.Is(err, service.ErrStoryGeneration) {
			code = http.StatusBadGateway
			errorCode = 50201
		}
		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: "故事生成失败",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "生成成功",
		"data":    doc,
	})
}
