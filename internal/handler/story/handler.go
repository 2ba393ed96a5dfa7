package story

import (
	"lullaby/internal/service"
)

// Handler 故事处理器
// 所有story相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	storyService *service.StoryService
	voiceService *service.VoiceService
}

// NewHandler 创建故事处理器
func NewHandler(storyService *service.StoryService, voiceService *service.VoiceService) *Handler {
	return &Handler{
		storyService: storyService,
		voiceService: voiceService,
	}
}
