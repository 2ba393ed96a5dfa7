package providers

import (
	"bytes"
	"context"
	"fmt"

	"lullaby/internal/pkg/ark"
	"lullaby/internal/pkg/fal"
	"lullaby/internal/pkg/id"
	"lullaby/internal/pkg/storage"
)

// FalImageProvider FAL.ai 插图生成实现
// FAL 直接返回托管好的图片 URL，无需再上传
type FalImageProvider struct {
	client *fal.Client
}

// NewFalImageProvider 创建 FAL 插图 provider
func NewFalImageProvider(client *fal.Client) (*FalImageProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("fal client is required")
	}
	return &FalImageProvider{client: client}, nil
}

// GenerateImage 生成插图并返回 URL
func (p *FalImageProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return p.client.GenerateImage(ctx, prompt)
}

// ArkImageProvider Ark 插图生成实现
// Ark 返回图片字节，需要先落到对象存储再拿到 URL
type ArkImageProvider struct {
	client  *ark.ImageClient
	storage storage.Storage
}

// NewArkImageProvider 创建 Ark 插图 provider
func NewArkImageProvider(client *ark.ImageClient, store storage.Storage) (*ArkImageProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("ark image client is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return &ArkImageProvider{client: client, storage: store}, nil
}

// GenerateImage 生成插图，上传到存储后返回 URL
func (p *ArkImageProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	data, err := p.client.GenerateImage(ctx, prompt, "")
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("illustrations/%s.png", id.New())
	url, err := p.storage.Upload(ctx, key, bytes.NewReader(data), "image/png")
	if err != nil {
		return "", fmt.Errorf("upload illustration: %w", err)
	}
	return url, nil
}
