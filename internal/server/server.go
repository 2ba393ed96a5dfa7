package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	aicomponent "lullaby/internal/ai/component"
	"lullaby/internal/config"
	"lullaby/internal/handler"
	authHandler "lullaby/internal/handler/auth"
	playbackHandler "lullaby/internal/handler/playback"
	storyHandler "lullaby/internal/handler/story"
	voiceHandler "lullaby/internal/handler/voice"
	"lullaby/internal/pkg/ark"
	"lullaby/internal/pkg/cache"
	"lullaby/internal/pkg/elevenlabs"
	"lullaby/internal/pkg/fal"
	"lullaby/internal/pkg/jwt"
	"lullaby/internal/pkg/mongodb"
	"lullaby/internal/pkg/storage"
	"lullaby/internal/pkg/storagefactory"
	"lullaby/internal/pkg/storygen"
	"lullaby/internal/pkg/storygen/providers"
	authRepo "lullaby/internal/repository/auth"
	storyRepo "lullaby/internal/repository/story"
	"lullaby/internal/server/middleware"
	"lullaby/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	mongo       *mongodb.Client
	redis       *cache.RedisCache
	playbackSvc *service.PlaybackService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB（必需，故事和用户数据都在这里）
	if cfg.Mongo.URI == "" {
		return nil, errors.New("mongo.uri is required")
	}
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	// 创建索引
	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	// 初始化存储
	store, err := storagefactory.NewStorage(context.Background(), &cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize storage, continuing without it")
		store = nil
	} else {
		log.Info().Str("type", store.GetStorageType()).Msg("storage initialized")
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 设置路由
	srv.setupRoutes(store)

	return srv, nil
}

// newStoryGenerator 根据配置组装故事生成流水线
// LLM未配置时返回nil，生成接口会报服务不可用
func newStoryGenerator(cfg *config.Config, store storage.Storage, elevenClient *elevenlabs.Client) *storygen.Generator {
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("AI API key not configured, story generation disabled")
		return nil
	}

	chatModel, err := aicomponent.NewChatModel(context.Background(), &cfg.AI)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize chat model, story generation disabled")
		return nil
	}
	llm, err := providers.NewEinoProvider(chatModel)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create LLM provider, story generation disabled")
		return nil
	}
	log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("chat model initialized")

	// 插图 provider，失败只降级
	var imageProvider storygen.ImageProvider
	if cfg.Image.APIKey != "" {
		switch cfg.Image.Provider {
		case "ark":
			client, err := ark.NewImageClient(&cfg.Image)
			if err != nil {
				log.Warn().Err(err).Msg("failed to initialize Ark image client")
			} else if store == nil {
				log.Warn().Msg("Ark image provider requires storage, illustrations disabled")
			} else if p, err := providers.NewArkImageProvider(client, store); err == nil {
				imageProvider = p
			}
		default:
			client, err := fal.NewClient(cfg.Image.APIKey, cfg.Image.BaseURL)
			if err != nil {
				log.Warn().Err(err).Msg("failed to initialize FAL client")
			} else if p, err := providers.NewFalImageProvider(client); err == nil {
				imageProvider = p
			}
		}
	}

	// 旁白与环境音 provider
	var tts storygen.TTSProvider
	var ambience storygen.AmbienceProvider
	if elevenClient != nil {
		if p, err := providers.NewElevenLabsProvider(elevenClient); err == nil {
			tts = p
			ambience = p
		}
	}

	gen, err := storygen.NewGenerator(llm, imageProvider, tts, ambience)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create story generator")
		return nil
	}
	return gen
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(store storage.Storage) {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.mongo)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	db := s.mongo.Database()

	// JWT 参数
	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}
	refreshTokenExpiry := s.cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	// Repository 层
	userRepo := authRepo.NewUserRepo(db)
	refreshTokenRepo := authRepo.NewRefreshTokenRepo(db)
	storiesRepo := storyRepo.NewStoryRepo(db)
	voicesRepo := storyRepo.NewVoiceSampleRepo(db)

	// 语音服务客户端（可选）
	var elevenClient *elevenlabs.Client
	if s.cfg.Voice.APIKey != "" {
		client, err := elevenlabs.NewClient(&s.cfg.Voice)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize voice client, narration and cloning disabled")
		} else {
			elevenClient = client
		}
	}

	// Service 层
	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, jwtSecret, accessTokenExpiry, refreshTokenExpiry)
	generator := newStoryGenerator(s.cfg, store, elevenClient)
	storySvc := service.NewStoryService(storiesRepo, generator, s.redis)
	voiceSvc := service.NewVoiceService(voicesRepo, elevenClient, store)
	s.playbackSvc = service.NewPlaybackService(storySvc, s.cfg.Playback.SessionTTL)

	// Handler 层
	authHdl := authHandler.NewHandler(authSvc)
	storyHdl := storyHandler.NewHandler(storySvc, voiceSvc)
	voiceHdl := voiceHandler.NewHandler(voiceSvc)
	playbackHdl := playbackHandler.NewHandler(s.playbackSvc, storySvc)

	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 认证接口（公开）
		v1.POST("/auth/register", authHdl.Register)
		v1.POST("/auth/login", authHdl.Login)
		v1.POST("/auth/refresh", authHdl.Refresh)
		v1.POST("/auth/logout", authHdl.Logout)
		v1.GET("/auth/me", authHdl.GetMe)

		// 公开故事列表（无需登录）
		v1.GET("/stories/public", storyHdl.ListPublicStories)

		// 需要认证的接口
		authed := v1.Group("")
		authed.Use(middleware.Auth(jwtUtil))
		{
			// 故事
			authed.POST("/stories/generate", storyHdl.GenerateStory)
			authed.GET("/stories", storyHdl.ListMyStories)
			authed.GET("/stories/:id", storyHdl.GetStory)
			authed.DELETE("/stories/:id", storyHdl.DeleteStory)

			// 声音
			authed.POST("/voices/clone", voiceHdl.CloneVoice)
			authed.GET("/voices", voiceHdl.ListVoices)
			authed.DELETE("/voices/:id", voiceHdl.DeleteVoice)

			// 播放会话
			authed.POST("/playback/sessions", playbackHdl.CreateSession)
			authed.GET("/playback/sessions/:id", playbackHdl.GetSession)
			authed.DELETE("/playback/sessions/:id", playbackHdl.CloseSession)
			authed.POST("/playback/sessions/:id/advance", playbackHdl.Advance)
			authed.POST("/playback/sessions/:id/retreat", playbackHdl.Retreat)
			authed.POST("/playback/sessions/:id/toggle", playbackHdl.Toggle)
			authed.POST("/playback/sessions/:id/save", playbackHdl.SaveStory)
			authed.POST("/playback/sessions/:id/share", playbackHdl.ShareStory)
		}
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 先停播放会话，再断后端连接
		if s.playbackSvc != nil {
			s.playbackSvc.Close()
		}
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
