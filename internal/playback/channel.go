package playback

import "sync"

// Channel 逻辑音频声道（旁白或环境音）
// 由 Sequencer 独占持有，外部只能通过 Sequencer 间接操作
type Channel interface {
	// Load 加载资源并重置播放进度，替换之前加载的资源
	Load(src string) error

	// Play 从当前进度开始播放，未加载资源时无声
	Play() error

	// Pause 暂停播放，保留进度
	Pause()

	// Stop 停止播放并卸载资源
	Stop()

	// SetLoop 设置是否循环播放
	SetLoop(loop bool)
}

// ChannelState 声道状态快照
type ChannelState struct {
	Source  string `json:"source,omitempty"` // 当前加载的资源地址
	Playing bool   `json:"playing"`          // 是否正在播放
	Loop    bool   `json:"loop"`             // 是否循环
}

// StateChannel 进程内声道实现
// 服务端不直接出声，只维护声道状态；播放会话接口把状态返回给客户端，
// 由客户端把状态镜像到真实的媒体元素上
type StateChannel struct {
	mu    sync.Mutex
	state ChannelState
}

// NewStateChannel 创建进程内声道
func NewStateChannel() *StateChannel {
	return &StateChannel{}
}

// Load 加载资源
func (c *StateChannel) Load(src string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Source = src
	c.state.Playing = false
	c.state.Loop = false
	return nil
}

// Play 开始播放
func (c *StateChannel) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Source != "" {
		c.state.Playing = true
	}
	return nil
}

// Pause 暂停播放
func (c *StateChannel) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Playing = false
}

// Stop 停止并卸载资源
func (c *StateChannel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ChannelState{}
}

// SetLoop 设置循环
func (c *StateChannel) SetLoop(loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loop = loop
}

// State 获取状态快照
func (c *StateChannel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
