package storygen

import "context"

// LLMProvider 故事文本生成端口
type LLMProvider interface {
	// Generate 发送 system + user 提示词，返回模型原始输出
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ImageProvider 插图生成端口，返回可访问的图片 URL
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// TTSProvider 旁白合成端口，返回 MP3 字节流
type TTSProvider interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// AmbienceProvider 环境音效生成端口，返回 MP3 字节流
type AmbienceProvider interface {
	SoundEffect(ctx context.Context, description string) ([]byte, error)
}
