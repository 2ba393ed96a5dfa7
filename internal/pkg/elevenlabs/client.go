package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"lullaby/internal/config"
)

// Client ElevenLabs API 客户端封装
// 覆盖三个能力：旁白 TTS、文本转环境音效、声音克隆
// 参考: https://api.elevenlabs.io/v1
type Client struct {
	apiURL          string
	apiKey          string
	modelID         string
	stability       float64
	similarityBoost float64
	httpClient      *http.Client
}

// NewClient 创建 ElevenLabs 客户端
func NewClient(cfg *config.VoiceConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("voice API key is required")
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.elevenlabs.io/v1"
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_monolingual_v1"
	}

	stability := cfg.Stability
	if stability == 0 {
		stability = 0.5
	}
	similarityBoost := cfg.SimilarityBoost
	if similarityBoost == 0 {
		similarityBoost = 0.5
	}

	return &Client{
		apiURL:          strings.TrimSuffix(apiURL, "/"),
		apiKey:          cfg.APIKey,
		modelID:         modelID,
		stability:       stability,
		similarityBoost: similarityBoost,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// ttsRequest TTS 请求体
type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// TextToSpeech 用指定声音合成旁白音频
// 返回 MP3 字节流
func (c *Client) TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("voice id is required")
	}

	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal TTS request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.apiURL, voiceID)
	return c.postAudio(ctx, url, body)
}

// soundEffectRequest 音效请求体
type soundEffectRequest struct {
	Text string `json:"text"`
}

// SoundEffect 根据描述生成环境音效
// 返回 MP3 字节流
func (c *Client) SoundEffect(ctx context.Context, description string) ([]byte, error) {
	body, err := json.Marshal(soundEffectRequest{Text: description})
	if err != nil {
		return nil, fmt.Errorf("marshal sound effect request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-sound-effects", c.apiURL)
	return c.postAudio(ctx, url, body)
}

// postAudio 发送 JSON 请求并读取音频响应
func (c *Client) postAudio(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio response: %w", err)
	}
	return audio, nil
}

// addVoiceResponse 声音克隆响应
type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

// AddVoice 上传声音样本，克隆出新的声音
// 返回上游分配的 voice_id
func (c *Client) AddVoice(ctx context.Context, name, description string, sample io.Reader, filename string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("voice name is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("name", name); err != nil {
		return "", fmt.Errorf("write name field: %w", err)
	}
	if description != "" {
		if err := writer.WriteField("description", description); err != nil {
			return "", fmt.Errorf("write description field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, sample); err != nil {
		return "", fmt.Errorf("copy sample data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/voices/add", c.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("voice clone failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result addVoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.VoiceID == "" {
		return "", fmt.Errorf("empty voice_id in response")
	}
	return result.VoiceID, nil
}
