package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"lullaby/internal/model/story"
	"lullaby/internal/pkg/elevenlabs"
	"lullaby/internal/pkg/storage"
	storyRepo "lullaby/internal/repository/story"
)

var (
	ErrVoiceNotFound    = errors.New("声音不存在")
	ErrVoiceUnavailable = errors.New("声音克隆服务不可用")
)

// 声音样本上限 10MB，超出直接拒绝
const maxSampleSize = 10 << 20

// VoiceService 声音克隆服务
// 样本透传给上游克隆，同时留档到对象存储
type VoiceService struct {
	voiceRepo storyRepo.VoiceSampleRepository
	client    *elevenlabs.Client
	storage   storage.Storage
}

// NewVoiceService 创建声音克隆服务
func NewVoiceService(repo storyRepo.VoiceSampleRepository, client *elevenlabs.Client, store storage.Storage) *VoiceService {
	return &VoiceService{
		voiceRepo: repo,
		client:    client,
		storage:   store,
	}
}

// CloneResult 声音克隆结果
type CloneResult struct {
	VoiceID   string
	VoiceName string
}

// Clone 克隆声音
// 上传样本到克隆服务获得 voice_id，样本留档存储，元数据落库
func (s *VoiceService) Clone(ctx context.Context, userID, name, description, filename string, sample io.Reader) (*CloneResult, error) {
	if s.client == nil {
		return nil, ErrVoiceUnavailable
	}

	data, err := io.ReadAll(io.LimitReader(sample, maxSampleSize+1))
	if err != nil {
		return nil, fmt.Errorf("read voice sample: %w", err)
	}
	if len(data) > maxSampleSize {
		return nil, errors.New("声音样本超过大小限制")
	}
	if len(data) == 0 {
		return nil, errors.New("声音样本为空")
	}

	voiceID, err := s.client.AddVoice(ctx, name, description, bytes.NewReader(data), filename)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("voice clone failed")
		return nil, fmt.Errorf("voice clone failed: %w", err)
	}

	// 留档样本，失败不影响克隆结果
	samplePath := fmt.Sprintf("voice-samples/%s/%s", userID, filename)
	if s.storage != nil {
		if _, err := s.storage.Upload(ctx, samplePath, bytes.NewReader(data), "audio/mpeg"); err != nil {
			log.Warn().Err(err).Str("path", samplePath).Msg("failed to archive voice sample")
			samplePath = ""
		}
	} else {
		samplePath = ""
	}

	v := &story.VoiceSample{
		VoiceID:     voiceID,
		VoiceName:   name,
		Description: description,
		SamplePath:  samplePath,
		UserID:      userID,
	}
	if err := s.voiceRepo.Create(ctx, v); err != nil {
		log.Error().Err(err).Str("voice_id", voiceID).Msg("failed to persist voice sample")
		return nil, err
	}

	return &CloneResult{VoiceID: voiceID, VoiceName: name}, nil
}

// List 查询用户可用的声音样本
func (s *VoiceService) List(ctx context.Context, userID string) ([]*story.VoiceSample, error) {
	return s.voiceRepo.ListByUser(ctx, userID)
}

// SampleURL 为留档样本签发临时下载URL，无样本或存储不可用时返回空串
func (s *VoiceService) SampleURL(ctx context.Context, v *story.VoiceSample) string {
	if s.storage == nil || v.SamplePath == "" {
		return ""
	}
	url, err := s.storage.GetPresignedDownloadURL(ctx, v.SamplePath, time.Hour)
	if err != nil {
		log.Warn().Err(err).Str("path", v.SamplePath).Msg("failed to sign sample download URL")
		return ""
	}
	return url
}

// Get 根据voice_id查询声音样本
func (s *VoiceService) Get(ctx context.Context, voiceID string) (*story.VoiceSample, error) {
	v, err := s.voiceRepo.FindByVoiceID(ctx, voiceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVoiceNotFound
		}
		return nil, err
	}
	return v, nil
}

// Delete 删除声音样本，仅所有者可删
func (s *VoiceService) Delete(ctx context.Context, voiceID, userID string) error {
	v, err := s.voiceRepo.FindByVoiceID(ctx, voiceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrVoiceNotFound
		}
		return err
	}
	if v.UserID != userID {
		return ErrStoryForbidden
	}
	return s.voiceRepo.Delete(ctx, voiceID)
}
