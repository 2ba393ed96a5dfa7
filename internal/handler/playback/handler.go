package playback

import (
	"lullaby/internal/service"
)

// Handler 播放会话处理器
type Handler struct {
	playbackService *service.PlaybackService
	storyService    *service.StoryService
}

// NewHandler 创建播放会话处理器
func NewHandler(playbackService *service.PlaybackService, storyService *service.StoryService) *Handler {
	return &Handler{
		playbackService: playbackService,
		storyService:    storyService,
	}
}
