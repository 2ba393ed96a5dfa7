package storygen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"lullaby/internal/pkg/logger"
	"lullaby/internal/playback"
)

// ErrGenerationFailed 故事草稿生成失败
// 仅文本生成或解析失败时返回；插图和音频失败只降级不报错
var ErrGenerationFailed = errors.New("story generation failed")

// Generator 故事生成流水线
// 先由 LLM 产出草稿，再逐段附加插图、旁白与环境音
type Generator struct {
	llm      LLMProvider
	image    ImageProvider
	tts      TTSProvider
	ambience AmbienceProvider
	log      zerolog.Logger
}

// NewGenerator 创建故事生成流水线
// image/tts/ambience 允许为 nil，对应的资源将留空
func NewGenerator(llm LLMProvider, image ImageProvider, tts TTSProvider, ambience AmbienceProvider) (*Generator, error) {
	if llm == nil {
		return nil, fmt.Errorf("LLM provider is required")
	}
	return &Generator{
		llm:      llm,
		image:    image,
		tts:      tts,
		ambience: ambience,
		log:      logger.With("storygen"),
	}, nil
}

// Generate 根据故事前提生成完整故事文档
// voiceID 为空时跳过旁白合成
func (g *Generator) Generate(ctx context.Context, premise, voiceID string) (*playback.Document, error) {
	raw, err := g.llm.Generate(ctx, SystemPrompt(), BuildStoryPrompt(premise))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	draft, err := ParseStoryDraft(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	doc := &playback.Document{
		Title:    draft.Title,
		Segments: make([]playback.Segment, len(draft.Segments)),
	}

	for i, seg := range draft.Segments {
		doc.Segments[i] = playback.Segment{
			Text:             seg.Text,
			ImageDescription: seg.ImageDescription,
			AmbienceTag:      seg.AudioAmbience,
			InteractionPoint: seg.InteractionPoint,
		}
		g.enrichSegment(ctx, &doc.Segments[i], i, voiceID)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return doc, nil
}

// enrichSegment 为单个段落生成插图与音频
// 任何一步失败都只记录日志，段落保留文本继续可用
func (g *Generator) enrichSegment(ctx context.Context, seg *playback.Segment, index int, voiceID string) {
	if g.image != nil && seg.ImageDescription != "" {
		url, err := g.image.GenerateImage(ctx, seg.ImageDescription)
		if err != nil {
			g.log.Warn().Err(err).Int("segment", index).Msg("image generation failed, segment will have no illustration")
		} else {
			seg.ImageURL = url
		}
	}

	if g.tts != nil && voiceID != "" {
		audio, err := g.tts.Synthesize(ctx, seg.Text, voiceID)
		if err != nil {
			g.log.Warn().Err(err).Int("segment", index).Msg("narration synthesis failed, segment will have no narration")
		} else {
			seg.NarrationAudio = base64.StdEncoding.EncodeToString(audio)
		}
	}

	if g.ambience != nil && seg.AmbienceTag != "" {
		audio, err := g.ambience.SoundEffect(ctx, seg.AmbienceTag)
		if err != nil {
			g.log.Warn().Err(err).Int("segment", index).Msg("ambience generation failed, segment will have no ambience")
		} else {
			seg.AmbienceAudio = base64.StdEncoding.EncodeToString(audio)
		}
	}
}
