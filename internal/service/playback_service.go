package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lullaby/internal/pkg/id"
	"lullaby/internal/pkg/logger"
	"lullaby/internal/playback"
)

var (
	ErrSessionNotFound  = errors.New("播放会话不存在")
	ErrSessionForbidden = errors.New("无权访问该播放会话")
)

// 清理间隔，过期会话最多多存活一个周期
const sweepInterval = time.Minute

// playbackSession 单个用户的播放会话
// 两个声道的状态由服务端维护，客户端按快照镜像播放
type playbackSession struct {
	id        string
	userID    string
	seq       *playback.Sequencer
	narration *playback.StateChannel
	ambience  *playback.StateChannel
	expiresAt time.Time
}

// SessionState 返回给客户端的会话快照
type SessionState struct {
	SessionID    string                `json:"session_id"`
	StoryID      string                `json:"story_id,omitempty"`
	Title        string                `json:"title"`
	Position     int                   `json:"position"`
	SegmentCount int                   `json:"segment_count"`
	Playing      bool                  `json:"playing"`
	Terminal     bool                  `json:"terminal"`
	Segment      *playback.Segment     `json:"segment,omitempty"`
	Narration    playback.ChannelState `json:"narration"`
	Ambience     playback.ChannelState `json:"ambience"`
}

// PlaybackService 播放会话服务
// 会话保存在内存中，超时未触碰的会话被定期回收
type PlaybackService struct {
	mu       sync.Mutex
	sessions map[string]*playbackSession
	storySvc *StoryService
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	log      zerolog.Logger
}

// NewPlaybackService 创建播放会话服务并启动回收循环
func NewPlaybackService(storySvc *StoryService, sessionTTL time.Duration) *PlaybackService {
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}
	s := &PlaybackService{
		sessions: make(map[string]*playbackSession),
		storySvc: storySvc,
		ttl:      sessionTTL,
		stop:     make(chan struct{}),
		log:      logger.With("playback"),
	}
	go s.sweepLoop()
	return s
}

// CreateSession 用一份故事文档创建播放会话
// 文档无效时整体拒绝，不产生半初始化的会话
func (s *PlaybackService) CreateSession(userID string, doc *playback.Document) (*SessionState, error) {
	narration := playback.NewStateChannel()
	ambience := playback.NewStateChannel()

	seq := playback.NewSequencer(narration, ambience,
		playback.WithGateway(NewStoryGateway(s.storySvc, userID)),
	)
	if err := seq.Load(doc); err != nil {
		return nil, err
	}

	session := &playbackSession{
		id:        id.NewShort(),
		userID:    userID,
		seq:       seq,
		narration: narration,
		ambience:  ambience,
		expiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()

	s.log.Info().Str("session_id", session.id).Str("user_id", userID).Msg("playback session created")
	return s.snapshot(session), nil
}

// GetState 查询会话当前状态
func (s *PlaybackService) GetState(sessionID, userID string) (*SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// Advance 手动前进一段
func (s *PlaybackService) Advance(sessionID, userID string) (*SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.seq.Advance()
	return s.snapshot(session), nil
}

// Retreat 手动后退一段
func (s *PlaybackService) Retreat(sessionID, userID string) (*SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.seq.Retreat()
	return s.snapshot(session), nil
}

// Toggle 切换播放/暂停
func (s *PlaybackService) Toggle(sessionID, userID string) (*SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.seq.TogglePlayPause()
	return s.snapshot(session), nil
}

// Save 在终点段落保存故事（私有）
func (s *PlaybackService) Save(ctx context.Context, sessionID, userID string) (string, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return "", err
	}
	return session.seq.Save(ctx)
}

// Share 在终点段落分享故事（公开）
func (s *PlaybackService) Share(ctx context.Context, sessionID, userID string) (string, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return "", err
	}
	return session.seq.Share(ctx)
}

// CloseSession 关闭并移除会话
func (s *PlaybackService) CloseSession(sessionID, userID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok && session.userID != userID {
		s.mu.Unlock()
		return ErrSessionForbidden
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.seq.Close()
	s.log.Info().Str("session_id", sessionID).Msg("playback session closed")
	return nil
}

// Close 停止回收循环并关闭所有会话
func (s *PlaybackService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	sessions := make([]*playbackSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.sessions = make(map[string]*playbackSession)
	s.mu.Unlock()

	for _, session := range sessions {
		session.seq.Close()
	}
}

// session 查找会话并校验归属，命中即续期
func (s *PlaybackService) session(sessionID, userID string) (*playbackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.userID != userID {
		return nil, ErrSessionForbidden
	}
	session.expiresAt = time.Now().Add(s.ttl)
	return session, nil
}

// snapshot 读取会话当前状态
func (s *PlaybackService) snapshot(session *playbackSession) *SessionState {
	state := &SessionState{
		SessionID: session.id,
		StoryID:   session.seq.StoryID(),
		Position:  session.seq.Position(),
		Playing:   session.seq.Playing(),
		Terminal:  session.seq.Terminal(),
		Narration: session.narration.State(),
		Ambience:  session.ambience.State(),
	}
	if seg, ok := session.seq.Current(); ok {
		state.Segment = &seg
	}
	if doc := session.seq.Doc(); doc != nil {
		state.Title = doc.Title
		state.SegmentCount = len(doc.Segments)
	}
	return state
}

// sweepLoop 定期回收过期会话
func (s *PlaybackService) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep 移除并关闭所有已过期的会话
func (s *PlaybackService) sweep(now time.Time) {
	s.mu.Lock()
	var expired []*playbackSession
	for sid, session := range s.sessions {
		if now.After(session.expiresAt) {
			expired = append(expired, session)
			delete(s.sessions, sid)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.seq.Close()
		s.log.Debug().Str("session_id", session.id).Msg("expired playback session reclaimed")
	}
}
