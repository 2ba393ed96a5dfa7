package providers

import (
	"context"
	"fmt"

	"lullaby/internal/pkg/elevenlabs"
)

// ElevenLabsProvider 同时实现旁白合成与环境音效生成
type ElevenLabsProvider struct {
	client *elevenlabs.Client
}

// NewElevenLabsProvider 创建 ElevenLabs provider
func NewElevenLabsProvider(client *elevenlabs.Client) (*ElevenLabsProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("elevenlabs client is required")
	}
	return &ElevenLabsProvider{client: client}, nil
}

// Synthesize 用指定声音合成旁白
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	return p.client.TextToSpeech(ctx, text, voiceID)
}

// SoundEffect 生成环境音效
func (p *ElevenLabsProvider) SoundEffect(ctx context.Context, description string) ([]byte, error) {
	return p.client.SoundEffect(ctx, description)
}
