package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeTimer 测试用定时器
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}

// fakeClock 测试用时钟，手动触发定时器
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// pending 当前待触发的定时器数量
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.active() {
			n++
		}
	}
	return n
}

// dispatch 将最早的待触发定时器标记为已派发并返回其回调
// 派发后 Stop 返回 false，与 time.Timer 语义一致
func (c *fakeClock) dispatch() func() {
	c.mu.Lock()
	var target *fakeTimer
	for _, t := range c.timers {
		if t.active() {
			target = t
			break
		}
	}
	c.mu.Unlock()

	if target == nil {
		return nil
	}
	target.mu.Lock()
	target.fired = true
	fn := target.fn
	target.mu.Unlock()
	return fn
}

// fire 触发最早的待触发定时器
func (c *fakeClock) fire() {
	if fn := c.dispatch(); fn != nil {
		fn()
	}
}

// failChannel 加载必败的声道，用于验证降级行为
type failChannel struct {
	StateChannel
	loadCalls int
}

func (c *failChannel) Load(src string) error {
	c.loadCalls++
	return errors.New("resource unreachable")
}

// fakeGateway 记录调用的持久化网关
type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	lastDoc *Document
	lastPub bool
	nextID  string
	err     error
}

func (g *fakeGateway) SaveStory(ctx context.Context, doc *Document, isPublic bool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastDoc = doc
	g.lastPub = isPublic
	if g.err != nil {
		return "", g.err
	}
	return g.nextID, nil
}

func testDocument(n int) *Document {
	doc := &Document{Title: "Test Story"}
	for i := 0; i < n; i++ {
		doc.Segments = append(doc.Segments, Segment{
			Text:           "segment text",
			ImageURL:       "https://example.com/img.png",
			NarrationAudio: "bmFycmF0aW9u",
			AmbienceAudio:  "YW1iaWVuY2U=",
		})
	}
	return doc
}

func newTestSequencer(opts ...Option) (*Sequencer, *StateChannel, *StateChannel, *fakeClock) {
	clock := &fakeClock{}
	narration := NewStateChannel()
	ambience := NewStateChannel()
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewSequencer(narration, ambience, opts...), narration, ambience, clock
}

func TestSequencerLoad(t *testing.T) {
	Convey("Load 加载文档后进入初始状态", t, func() {
		seq, narration, ambience, clock := newTestSequencer()

		Convey("合法文档：位置0、播放中、两个声道已加载、一个定时器待触发", func() {
			So(seq.Load(testDocument(3)), ShouldBeNil)

			So(seq.Position(), ShouldEqual, 0)
			So(seq.Playing(), ShouldBeTrue)
			So(narration.State().Source, ShouldEqual, "data:audio/mp3;base64,bmFycmF0aW9u")
			So(narration.State().Playing, ShouldBeTrue)
			So(ambience.State().Loop, ShouldBeTrue)
			So(ambience.State().Playing, ShouldBeTrue)
			So(clock.pending(), ShouldEqual, 1)
		})

		Convey("空分段列表：返回 ErrInvalidDocument，状态机不变（场景C）", func() {
			err := seq.Load(&Document{Title: "Empty"})
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
			So(seq.Playing(), ShouldBeFalse)
			So(narration.State().Source, ShouldBeEmpty)
			So(clock.pending(), ShouldEqual, 0)
		})

		Convey("重新加载新文档：完全重置，不保留旧位置", func() {
			So(seq.Load(testDocument(3)), ShouldBeNil)
			seq.Advance()
			So(seq.Position(), ShouldEqual, 1)

			So(seq.Load(testDocument(5)), ShouldBeNil)
			So(seq.Position(), ShouldEqual, 0)
			So(seq.Playing(), ShouldBeTrue)
			So(clock.pending(), ShouldEqual, 1)
		})

		Convey("单分段文档：加载即终点，不计时（场景A）", func() {
			So(seq.Load(testDocument(1)), ShouldBeNil)
			So(seq.Terminal(), ShouldBeTrue)
			So(clock.pending(), ShouldEqual, 0)

			seq.Advance()
			So(seq.Position(), ShouldEqual, 0)
		})
	})
}

func TestSequencerNavigation(t *testing.T) {
	Convey("Advance/Retreat 在边界处是空操作", t, func() {
		seq, _, _, clock := newTestSequencer()
		So(seq.Load(testDocument(3)), ShouldBeNil)

		Convey("Advance 不会越过最后一个分段", func() {
			for i := 0; i < 10; i++ {
				seq.Advance()
			}
			So(seq.Position(), ShouldEqual, 2)
			So(seq.Terminal(), ShouldBeTrue)
		})

		Convey("Retreat 在第0段是空操作", func() {
			seq.Retreat()
			So(seq.Position(), ShouldEqual, 0)
		})

		Convey("每次切换分段都先取消旧定时器，任何时刻至多一个待触发", func() {
			seq.Advance()
			So(clock.pending(), ShouldEqual, 1)
			seq.Advance()
			// 终点分段不计时
			So(clock.pending(), ShouldEqual, 0)
			seq.Retreat()
			So(clock.pending(), ShouldEqual, 1)
		})
	})
}

func TestSequencerAutoAdvance(t *testing.T) {
	Convey("自动推进定时器", t, func() {
		seq, _, _, clock := newTestSequencer()

		Convey("定时器触发后前进一段并重新计时", func() {
			So(seq.Load(testDocument(3)), ShouldBeNil)

			clock.fire()
			So(seq.Position(), ShouldEqual, 1)
			So(clock.pending(), ShouldEqual, 1)

			clock.fire()
			So(seq.Position(), ShouldEqual, 2)
			// 到达终点，不再计时
			So(clock.pending(), ShouldEqual, 0)
		})

		Convey("互动点分段不计时，等待手动推进（场景B）", func() {
			doc := testDocument(3)
			doc.Segments[1].InteractionPoint = true
			So(seq.Load(doc), ShouldBeNil)
			So(clock.pending(), ShouldEqual, 1)

			// 第0段计时到期，落在互动点
			clock.fire()
			So(seq.Position(), ShouldEqual, 1)
			So(clock.pending(), ShouldEqual, 0)

			// 手动推进离开互动点后恢复计时……但第2段已是终点
			seq.Advance()
			So(seq.Position(), ShouldEqual, 2)
			So(clock.pending(), ShouldEqual, 0)
		})

		Convey("离开互动点落在非终点分段：重新计时并真正触发", func() {
			doc := testDocument(4)
			doc.Segments[1].InteractionPoint = true
			So(seq.Load(doc), ShouldBeNil)

			clock.fire()
			So(seq.Position(), ShouldEqual, 1)
			So(clock.pending(), ShouldEqual, 0)

			// 手动离开互动点，第2段换上新定时器
			seq.Advance()
			So(seq.Position(), ShouldEqual, 2)
			So(clock.pending(), ShouldEqual, 1)

			clock.fire()
			So(seq.Position(), ShouldEqual, 3)
			So(seq.Terminal(), ShouldBeTrue)
			So(clock.pending(), ShouldEqual, 0)
		})

		Convey("暂停状态下进入互动点分段同样不计时", func() {
			doc := testDocument(2)
			doc.Segments[0].InteractionPoint = true
			So(seq.Load(doc), ShouldBeNil)
			So(clock.pending(), ShouldEqual, 0)

			seq.TogglePlayPause() // 暂停
			seq.TogglePlayPause() // 恢复
			So(clock.pending(), ShouldEqual, 0)
		})
	})
}

func TestSequencerStaleTimerCallback(t *testing.T) {
	Convey("定时器触发与用户操作同瞬间交错", t, func() {
		seq, _, _, clock := newTestSequencer()
		So(seq.Load(testDocument(4)), ShouldBeNil)

		Convey("已派发的回调在手动推进之后落地：空操作，不连跳两段", func() {
			// 回调已派发但尚未拿到锁，此后 Stop 无法再取消它
			stale := clock.dispatch()
			So(stale, ShouldNotBeNil)

			// 用户先拿到锁，手动推进并换上新定时器
			seq.Advance()
			So(seq.Position(), ShouldEqual, 1)
			So(clock.pending(), ShouldEqual, 1)

			// 作废回调随后落地
			stale()
			So(seq.Position(), ShouldEqual, 1)

			// 新定时器未被作废回调清掉，暂停仍能取消它
			So(clock.pending(), ShouldEqual, 1)
			seq.TogglePlayPause()
			So(clock.pending(), ShouldEqual, 0)
			So(seq.Position(), ShouldEqual, 1)
		})

		Convey("已派发的回调在暂停之后落地：不推进", func() {
			stale := clock.dispatch()
			So(stale, ShouldNotBeNil)

			seq.TogglePlayPause()
			So(seq.Playing(), ShouldBeFalse)

			stale()
			So(seq.Position(), ShouldEqual, 0)
			So(clock.pending(), ShouldEqual, 0)
		})

		Convey("正常触发路径不受代数检查影响", func() {
			clock.fire()
			So(seq.Position(), ShouldEqual, 1)
			clock.fire()
			So(seq.Position(), ShouldEqual, 2)
		})
	})
}

func TestSequencerTogglePlayPause(t *testing.T) {
	Convey("TogglePlayPause 切换播放状态", t, func() {
		seq, narration, ambience, clock := newTestSequencer()
		So(seq.Load(testDocument(3)), ShouldBeNil)

		Convey("暂停：两个声道暂停，定时器取消", func() {
			seq.TogglePlayPause()

			So(seq.Playing(), ShouldBeFalse)
			So(narration.State().Playing, ShouldBeFalse)
			So(ambience.State().Playing, ShouldBeFalse)
			So(clock.pending(), ShouldEqual, 0)
		})

		Convey("恢复：声道继续，按完整间隔重新计时", func() {
			seq.TogglePlayPause()
			seq.TogglePlayPause()

			So(seq.Playing(), ShouldBeTrue)
			So(narration.State().Playing, ShouldBeTrue)
			So(clock.pending(), ShouldEqual, 1)
		})

		Convey("连续两次切换回到原状态，位置不变", func() {
			before := seq.Position()
			seq.TogglePlayPause()
			seq.TogglePlayPause()
			So(seq.Playing(), ShouldBeTrue)
			So(seq.Position(), ShouldEqual, before)
		})

		Convey("暂停后定时器不会触发推进", func() {
			seq.TogglePlayPause()
			clock.fire() // 已取消的定时器不会被触发，fire 是空操作
			So(seq.Position(), ShouldEqual, 0)
		})
	})
}

func TestSequencerDegradedResources(t *testing.T) {
	Convey("资源缺失或加载失败只降级，不中断播放", t, func() {
		Convey("旁白音频为空串：声道不加载、无报错（场景D）", func() {
			seq, narration, _, _ := newTestSequencer()
			doc := testDocument(3)
			doc.Segments[2].NarrationAudio = ""
			So(seq.Load(doc), ShouldBeNil)

			seq.Advance()
			seq.Advance()
			So(seq.Position(), ShouldEqual, 2)
			So(narration.State().Source, ShouldBeEmpty)
			So(narration.State().Playing, ShouldBeFalse)
		})

		Convey("声道加载失败：播放继续，定时器照常计时", func() {
			clock := &fakeClock{}
			narration := &failChannel{}
			seq := NewSequencer(narration, NewStateChannel(), WithClock(clock))

			So(seq.Load(testDocument(2)), ShouldBeNil)
			So(narration.loadCalls, ShouldEqual, 1)
			So(seq.Playing(), ShouldBeTrue)
			So(clock.pending(), ShouldEqual, 1)
		})
	})
}

func TestSequencerSaveShare(t *testing.T) {
	Convey("Save/Share 只在最后一个分段可用", t, func() {
		gw := &fakeGateway{nextID: "story-123"}
		seq, _, _, _ := newTestSequencer(WithGateway(gw))
		So(seq.Load(testDocument(3)), ShouldBeNil)

		Convey("非终点分段：返回 ErrNotTerminal，不调用网关", func() {
			_, err := seq.Save(context.Background())
			So(errors.Is(err, ErrNotTerminal), ShouldBeTrue)
			So(gw.calls, ShouldEqual, 0)
		})

		Convey("终点分段保存：网关收到文档快照，私有可见", func() {
			seq.Advance()
			seq.Advance()

			storyID, err := seq.Save(context.Background())
			So(err, ShouldBeNil)
			So(storyID, ShouldEqual, "story-123")
			So(gw.calls, ShouldEqual, 1)
			So(gw.lastPub, ShouldBeFalse)
			So(gw.lastDoc.Title, ShouldEqual, "Test Story")
			So(seq.StoryID(), ShouldEqual, "story-123")
		})

		Convey("终点分段分享：公开可见", func() {
			seq.Advance()
			seq.Advance()

			_, err := seq.Share(context.Background())
			So(err, ShouldBeNil)
			So(gw.lastPub, ShouldBeTrue)
		})

		Convey("保存后再分享：网关收到已分配的故事ID（原地更新语义）", func() {
			seq.Advance()
			seq.Advance()

			_, err := seq.Save(context.Background())
			So(err, ShouldBeNil)
			_, err = seq.Share(context.Background())
			So(err, ShouldBeNil)
			So(gw.lastDoc.ID, ShouldEqual, "story-123")
		})

		Convey("网关失败：错误返回给调用方，播放状态不受影响", func() {
			seq.Advance()
			seq.Advance()
			gw.err = errors.New("db unavailable")

			_, err := seq.Save(context.Background())
			So(err, ShouldNotBeNil)
			So(seq.Position(), ShouldEqual, 2)
			So(seq.Playing(), ShouldBeTrue)
		})
	})
}

func TestSequencerClose(t *testing.T) {
	Convey("Close 释放声道和定时器", t, func() {
		seq, narration, ambience, clock := newTestSequencer()
		So(seq.Load(testDocument(3)), ShouldBeNil)

		seq.Close()

		So(narration.State().Source, ShouldBeEmpty)
		So(ambience.State().Source, ShouldBeEmpty)
		So(clock.pending(), ShouldEqual, 0)

		Convey("关闭后残留的定时器触发是空操作", func() {
			clock.fire()
			So(seq.Position(), ShouldEqual, 0)
		})
	})
}
