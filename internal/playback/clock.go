package playback

import "time"

// Timer 已调度的一次性回调
type Timer interface {
	// Stop 取消回调，返回是否在触发前成功取消
	Stop() bool
}

// Clock 定时器来源
// Sequencer 通过 Clock 安排自动推进回调，测试中可注入假时钟
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// systemClock 基于 time.AfterFunc 的真实时钟
type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock 获取真实时钟
func SystemClock() Clock {
	return systemClock{}
}
