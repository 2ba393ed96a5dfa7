package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lullaby/internal/model/story"
	"lullaby/internal/pkg/cache"
	"lullaby/internal/pkg/id"
	"lullaby/internal/pkg/storygen"
	"lullaby/internal/playback"
	storyRepo "lullaby/internal/repository/story"
)

var (
	ErrStoryNotFound   = errors.New("故事不存在")
	ErrStoryForbidden  = errors.New("无权访问该故事")
	ErrStoryGeneration = errors.New("故事生成失败")
)

// StoryService 故事服务
// 负责故事生成、保存与分享
type StoryService struct {
	storyRepo storyRepo.StoryRepository
	generator *storygen.Generator
	cache     *cache.RedisCache
}

// NewStoryService 创建故事服务
// cache 允许为 nil，公开故事列表将直接查库
func NewStoryService(repo storyRepo.StoryRepository, generator *storygen.Generator, redisCache *cache.RedisCache) *StoryService {
	return &StoryService{
		storyRepo: repo,
		generator: generator,
		cache:     redisCache,
	}
}

// Generate 生成一个新的睡前故事文档
// 生成结果不落库，由播放会话在终点段落时按需保存
func (s *StoryService) Generate(ctx context.Context, premise, voiceID string) (*playback.Document, error) {
	if s.generator == nil {
		return nil, ErrStoryGeneration
	}

	doc, err := s.generator.Generate(ctx, premise, voiceID)
	if err != nil {
		log.Error().Err(err).Str("premise", premise).Msg("story generation failed")
		if errors.Is(err, storygen.ErrGenerationFailed) {
			return nil, ErrStoryGeneration
		}
		return nil, err
	}
	return doc, nil
}

// Save 保存故事
// 文档已有 ID 且属于该用户时原地更新，否则新建一条记录
// 返回故事 ID
func (s *StoryService) Save(ctx context.Context, userID string, doc *playback.Document, isPublic bool) (string, error) {
	content, err := doc.Marshal()
	if err != nil {
		return "", err
	}

	if doc.ID != "" {
		existing, err := s.storyRepo.FindByID(ctx, doc.ID)
		if err == nil && existing.UserID == userID {
			update := bson.M{"$set": bson.M{
				"title":     doc.Title,
				"content":   string(content),
				"is_public": isPublic,
			}}
			if err := s.storyRepo.Update(ctx, doc.ID, update); err != nil {
				return "", err
			}
			s.invalidatePublicCache(ctx)
			return doc.ID, nil
		}
		// 找不到或归属不符时退回新建
	}

	st := &story.Story{
		ID:       id.New(),
		UserID:   userID,
		Title:    doc.Title,
		Content:  string(content),
		IsPublic: isPublic,
	}
	if err := s.storyRepo.Create(ctx, st); err != nil {
		return "", err
	}
	if isPublic {
		s.invalidatePublicCache(ctx)
	}
	return st.ID, nil
}

// Get 查询故事，仅故事所有者或公开故事可见
func (s *StoryService) Get(ctx context.Context, storyID, userID string) (*story.Story, error) {
	st, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	if !st.IsPublic && st.UserID != userID {
		return nil, ErrStoryForbidden
	}
	return st, nil
}

// Document 解析故事内容为可播放文档
func (s *StoryService) Document(st *story.Story) (*playback.Document, error) {
	doc, err := playback.ParseDocument([]byte(st.Content))
	if err != nil {
		return nil, err
	}
	doc.ID = st.ID
	return doc, nil
}

// ListMine 查询用户自己的故事列表
func (s *StoryService) ListMine(ctx context.Context, userID string, page, pageSize int64) ([]*story.Story, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.storyRepo.ListByUser(ctx, userID, page, pageSize)
}

// ListPublic 查询公开故事列表，结果短暂缓存
func (s *StoryService) ListPublic(ctx context.Context, limit int64) ([]*story.Story, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if s.cache != nil {
		var cached []*story.Story
		if err := s.cache.Get(ctx, cache.PublicStoriesCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	stories, err := s.storyRepo.ListPublic(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.PublicStoriesCacheKey, stories, cache.PublicStoriesCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache public stories")
		}
	}
	return stories, nil
}

// Delete 删除故事，仅所有者可删
func (s *StoryService) Delete(ctx context.Context, storyID, userID string) error {
	st, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrStoryNotFound
		}
		return err
	}
	if st.UserID != userID {
		return ErrStoryForbidden
	}
	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return err
	}
	if st.IsPublic {
		s.invalidatePublicCache(ctx)
	}
	return nil
}

// invalidatePublicCache 公开列表内容变化后使缓存失效
func (s *StoryService) invalidatePublicCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.PublicStoriesCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate public stories cache")
	}
}

// storyGateway 播放会话保存故事的出口
type storyGateway struct {
	svc    *StoryService
	userID string
}

// NewStoryGateway 为指定用户创建播放会话使用的保存出口
func NewStoryGateway(svc *StoryService, userID string) playback.Gateway {
	return &storyGateway{svc: svc, userID: userID}
}

// SaveStory 实现 playback.Gateway
func (g *storyGateway) SaveStory(ctx context.Context, doc *playback.Document, isPublic bool) (string, error) {
	return g.svc.Save(ctx, g.userID, doc, isPublic)
}
