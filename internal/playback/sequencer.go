package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lullaby/internal/pkg/logger"
)

// SegmentDuration 每个分段的自动推进间隔
// 固定15秒，不随分段内容变化；暂停后恢复会重新计时完整间隔
const SegmentDuration = 15 * time.Second

var (
	// ErrNoDocument 尚未加载文档
	ErrNoDocument = errors.New("no document loaded")

	// ErrNotTerminal 保存/分享只在最后一个分段可用
	ErrNotTerminal = errors.New("not at terminal segment")

	// ErrNoGateway 未配置持久化网关
	ErrNoGateway = errors.New("no persistence gateway configured")
)

// Gateway 持久化网关
// 保存和分享共用一个入口，isPublic 区分可见性；
// 文档已有ID时由实现方决定原地更新还是新插入
type Gateway interface {
	SaveStory(ctx context.Context, doc *Document, isPublic bool) (string, error)
}

// Option Sequencer 可选配置
type Option func(*Sequencer)

// WithClock 注入定时器来源（测试用）
func WithClock(clock Clock) Option {
	return func(s *Sequencer) { s.clock = clock }
}

// WithInterval 覆盖自动推进间隔（测试用）
func WithInterval(d time.Duration) Option {
	return func(s *Sequencer) { s.interval = d }
}

// WithGateway 设置持久化网关
func WithGateway(gw Gateway) Option {
	return func(s *Sequencer) { s.gateway = gw }
}

// Sequencer 故事播放状态机
// 持有当前分段位置、播放状态、两个声道和至多一个待触发的自动推进定时器；
// 所有操作经过同一把锁串行执行，定时器触发和用户输入不会交错
type Sequencer struct {
	mu  sync.Mutex
	log zerolog.Logger

	doc      *Document
	position int
	playing  bool

	narration Channel
	ambience  Channel

	clock    Clock
	timer    Timer
	timerGen uint64
	interval time.Duration

	gateway Gateway
	savedID string // 保存成功后记住故事ID，再次分享走原地更新
	closed  bool
}

// NewSequencer 创建播放状态机
// 两个声道由调用方提供并从此归 Sequencer 独占
func NewSequencer(narration, ambience Channel, opts ...Option) *Sequencer {
	s := &Sequencer{
		log:       logger.With("playback"),
		narration: narration,
		ambience:  ambience,
		clock:     SystemClock(),
		interval:  SegmentDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load 加载故事文档并重置状态机
// 文档非法返回 ErrInvalidDocument；成功后回到第0段、自动播放，
// 替换之前加载的文档（不保留旧的位置和声道状态）
func (s *Sequencer) Load(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc
	s.position = 0
	s.playing = true
	s.savedID = doc.ID
	s.closed = false
	s.enterSegment()

	s.log.Debug().
		Str("title", doc.Title).
		Int("segments", len(doc.Segments)).
		Msg("document loaded")
	return nil
}

// Advance 前进到下一个分段
// 已在最后一个分段时是空操作，不报错
func (s *Sequencer) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil || s.position >= len(s.doc.Segments)-1 {
		return
	}
	s.position++
	s.enterSegment()
}

// Retreat 回退到上一个分段
// 已在第0段时是空操作，不报错
func (s *Sequencer) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil || s.position <= 0 {
		return
	}
	s.position--
	s.enterSegment()
}

// TogglePlayPause 切换播放/暂停
// 暂停取消待触发的定时器；恢复让两个声道从当前进度继续，
// 并按完整间隔重新计时（不保留已流逝的时间）
func (s *Sequencer) TogglePlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return
	}

	s.playing = !s.playing
	if s.playing {
		if err := s.narration.Play(); err != nil {
			s.log.Warn().Err(err).Msg("narration resume failed")
		}
		if err := s.ambience.Play(); err != nil {
			s.log.Warn().Err(err).Msg("ambience resume failed")
		}
		if s.timer == nil {
			s.armTimer()
		}
	} else {
		s.narration.Pause()
		s.ambience.Pause()
		s.cancelTimer()
	}
}

// Save 保存故事（私有）
// 只在最后一个分段可用；对文档快照执行，不阻塞后续导航
func (s *Sequencer) Save(ctx context.Context) (string, error) {
	return s.persist(ctx, false)
}

// Share 分享故事（公开可见）
func (s *Sequencer) Share(ctx context.Context) (string, error) {
	return s.persist(ctx, true)
}

func (s *Sequencer) persist(ctx context.Context, isPublic bool) (string, error) {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return "", ErrNoDocument
	}
	if s.position != len(s.doc.Segments)-1 {
		s.mu.Unlock()
		return "", ErrNotTerminal
	}
	if s.gateway == nil {
		s.mu.Unlock()
		return "", ErrNoGateway
	}

	// 拍快照后立即放锁：网关调用期间允许继续导航
	snapshot := *s.doc
	snapshot.Segments = append([]Segment(nil), s.doc.Segments...)
	if snapshot.ID == "" {
		snapshot.ID = s.savedID
	}
	gw := s.gateway
	s.mu.Unlock()

	storyID, err := gw.SaveStory(ctx, &snapshot, isPublic)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.savedID = storyID
	s.mu.Unlock()
	return storyID, nil
}

// Close 释放声道和定时器
// 离开播放界面时必须调用，保证所有退出路径都释放资源
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimer()
	s.narration.Stop()
	s.ambience.Stop()
	s.closed = true
}

// Position 当前分段下标
func (s *Sequencer) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Playing 是否处于播放状态
func (s *Sequencer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Terminal 是否位于最后一个分段（保存/分享可用）
func (s *Sequencer) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc != nil && s.position == len(s.doc.Segments)-1
}

// Current 当前分段
func (s *Sequencer) Current() (Segment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return Segment{}, false
	}
	return s.doc.Segments[s.position], true
}

// Doc 当前加载的故事文档，未加载时为nil
func (s *Sequencer) Doc() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// StoryID 保存/分享成功后分配的故事ID，未保存时为空
func (s *Sequencer) StoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedID
}

// enterSegment 进入当前分段（加锁状态下调用）
// 顺序固定：取消旧定时器 → 停止并卸载两个声道 → 加载新资源 →
// 视条件重新计时。资源加载失败只降级该声道，不中断播放
func (s *Sequencer) enterSegment() {
	s.cancelTimer()
	s.narration.Stop()
	s.ambience.Stop()

	seg := s.doc.Segments[s.position]

	if src := audioSource(seg.NarrationAudio); src != "" {
		if err := s.narration.Load(src); err != nil {
			s.log.Warn().Err(err).Int("position", s.position).Msg("narration load failed, segment degraded")
		}
	}
	if src := audioSource(seg.AmbienceAudio); src != "" {
		if err := s.ambience.Load(src); err != nil {
			s.log.Warn().Err(err).Int("position", s.position).Msg("ambience load failed, segment degraded")
		} else {
			s.ambience.SetLoop(true)
		}
	}

	if s.playing {
		if err := s.narration.Play(); err != nil {
			s.log.Warn().Err(err).Msg("narration play failed")
		}
		if err := s.ambience.Play(); err != nil {
			s.log.Warn().Err(err).Msg("ambience play failed")
		}
	}

	// 互动点和最后一个分段都不计时：前者等待用户操作，后者无处可去
	if s.playing && !seg.InteractionPoint && s.position < len(s.doc.Segments)-1 {
		s.armTimer()
	}
}

// armTimer 安排自动推进（加锁状态下调用）
// 任何时刻至多一个待触发定时器，两个并存会导致连跳两段；
// 回调携带计时代数，用于识别已作废的触发
func (s *Sequencer) armTimer() {
	if s.doc == nil {
		return
	}
	seg := s.doc.Segments[s.position]
	if seg.InteractionPoint || s.position >= len(s.doc.Segments)-1 {
		return
	}
	s.timerGen++
	gen := s.timerGen
	s.timer = s.clock.AfterFunc(s.interval, func() { s.onTimerFire(gen) })
}

// cancelTimer 取消待触发定时器（加锁状态下调用）
// 回调已派发时 Stop 无法阻止它进入，递增代数让它落地后变成空操作
func (s *Sequencer) cancelTimer() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// onTimerFire 定时器回调，与用户操作走同一把锁
func (s *Sequencer) onTimerFire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 触发与用户操作同瞬间交错时，先拿到锁的一方胜出；
	// 作废的回调在这里被代数检查拦下，不会连跳两段
	if gen != s.timerGen {
		return
	}
	s.timer = nil
	if s.closed || s.doc == nil || !s.playing {
		return
	}
	if s.position >= len(s.doc.Segments)-1 {
		return
	}
	s.position++
	s.enterSegment()
}
