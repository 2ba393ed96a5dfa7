package voice

import (
	"lullaby/internal/service"
)

// Handler 声音处理器
type Handler struct {
	voiceService *service.VoiceService
}

// NewHandler 创建声音处理器
func NewHandler(voiceService *service.VoiceService) *Handler {
	return &Handler{
		voiceService: voiceService,
	}
}
