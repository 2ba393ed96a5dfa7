package playback

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDocument 文档为空或缺失必要字段，拒绝进入播放状态
var ErrInvalidDocument = errors.New("invalid story document")

// Segment 一个故事分段（一个叙事节拍）
// 字段名与生成服务/持久化内容的线上格式保持一致
type Segment struct {
	Text             string `json:"text"`              // 展示/旁白文本（必填）
	ImageDescription string `json:"image_description"` // 插图生成提示词（仅供展示）
	AmbienceTag      string `json:"audio_ambience"`    // 环境音描述标签
	InteractionPoint bool   `json:"interaction_point"` // 互动点：到达后暂停自动推进
	ImageURL         string `json:"imageUrl"`          // 插图地址（生成失败时为空）
	NarrationAudio   string `json:"narrationAudio"`    // 旁白音频（base64内联或URL，可为空）
	AmbienceAudio    string `json:"ambienceAudio"`     // 环境音音频（base64内联或URL，可为空）
}

// Document 播放器消费的完整故事文档
type Document struct {
	ID       string    `json:"id,omitempty"` // 已持久化时存在
	Title    string    `json:"title"`
	Segments []Segment `json:"segments"`
}

// Validate 校验文档是否可以播放
// 分段列表为空或某个分段缺失文本都视为非法文档（fail closed），
// 插图/音频缺失只是降级，不影响校验
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if len(d.Segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidDocument)
	}
	for i, seg := range d.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("%w: segment %d missing text", ErrInvalidDocument, i)
		}
	}
	return nil
}

// ParseDocument 解析序列化的故事文档
// 持久化内容和生成结果都经过这里，解析失败或校验失败一律返回 ErrInvalidDocument，
// 不把部分解析的字段放进状态机
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal 序列化故事文档（保存/分享时使用）
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// audioSource 把分段里的音频字段转成可加载的资源地址
// base64 内联数据转为 data URI（与播放端媒体元素的消费方式一致），
// URL 原样返回，空串表示该声道无资源
func audioSource(audio string) string {
	if audio == "" {
		return ""
	}
	if strings.HasPrefix(audio, "http://") || strings.HasPrefix(audio, "https://") ||
		strings.HasPrefix(audio, "data:") {
		return audio
	}
	return "data:audio/mp3;base64," + audio
}
