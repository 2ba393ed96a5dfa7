package ark

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"lullaby/internal/config"
)

const (
	defaultBaseURL    = "https://ark.cn-beijing.volces.com/api/v3"
	defaultImageModel = "doubao-seedream-3-0-t2i-250415"
)

// ImageClient Ark 图片生成客户端
// 调用火山引擎 Ark API 生成故事插图
type ImageClient struct {
	client *arkruntime.Client
	model  string
}

// NewImageClient 创建 Ark 图片生成客户端
func NewImageClient(cfg *config.ImageConfig) (*ImageClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("image API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultImageModel
	}

	arkClient := arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(baseURL))

	return &ImageClient{
		client: arkClient,
		model:  modelName,
	}, nil
}

// GenerateImage 生成图片，返回解码后的图片字节
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string, size string) ([]byte, error) {
	if size == "" {
		size = "1280x720"
	}

	responseFormat := "b64_json"
	watermark := false

	input := model.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           &size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	}

	output, err := c.client.GenerateImages(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark GenerateImages API")
		return nil, fmt.Errorf("Ark GenerateImages API call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}

	firstImage := output.Data[0]
	if firstImage.B64Json == nil {
		return nil, fmt.Errorf("no b64_json in response data")
	}

	imageData, err := base64.StdEncoding.DecodeString(*firstImage.B64Json)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}

	return imageData, nil
}
