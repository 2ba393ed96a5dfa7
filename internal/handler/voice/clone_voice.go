package voice

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CloneVoiceResponseData 声音克隆响应数据
type CloneVoiceResponseData struct {
	VoiceID   string `json:"voice_id"`   // 克隆出的声音ID
	VoiceName string `json:"voice_name"` // 展示名称
}

// CloneVoice 克隆声音
// @Summary      克隆声音
// @Description  上传声音样本（音频文件），克隆出可用于旁白的声音
// @Tags         声音
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name         formData  string  true   "声音名称"
// @Param        description  formData  string  false  "声音描述"
// @Param        sample       formData  file    true   "声音样本音频文件"
// @Success      201          {object}  map[string]interface{}
// @Failure      400          {object}  ErrorResponse
// @Failure      502          {object}  ErrorResponse
// @Router       /api/v1/voices/clone [post]
func (h *Handler) CloneVoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "声音名称不能为空",
		})
		return
	}
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("sample")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "缺少声音样本文件",
			Detail:  err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "无法读取声音样本文件",
			Detail:  err.Error(),
		})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	result, err := h.voiceService.Clone(ctx, userID, name, description, fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    50202,
			Message: "声音克隆失败",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "克隆成功",
		"data": CloneVoiceResponseData{
			VoiceID:   result.VoiceID,
			VoiceName: result.VoiceName,
		},
	})
}
