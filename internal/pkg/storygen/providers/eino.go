package providers

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoProvider 基于 eino ChatModel 的故事文本生成实现
type EinoProvider struct {
	chatModel einomodel.ChatModel
}

// NewEinoProvider 创建 eino 文本生成 provider
func NewEinoProvider(chatModel einomodel.ChatModel) (*EinoProvider, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	return &EinoProvider{chatModel: chatModel}, nil
}

// Generate 调用模型生成故事文本
func (p *EinoProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}

	resp, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat model generate failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("chat model returned empty content")
	}
	return resp.Content, nil
}
