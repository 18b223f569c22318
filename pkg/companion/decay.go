package companion

// DefaultDecayTimeout 情绪回落到 neutral 的超时时间（秒）
const DefaultDecayTimeout = 120.0

// DecayTimer 情绪衰减计时器
//
// 唯一允许在没有外部触发的情况下把情绪改回 neutral 的组件。
// 计时只看 State.ChangedAt：重复上报同一情绪是空操作，不会延长计时；
// 姿势变化也不会影响计时，姿势永远不会自动恢复。
type DecayTimer struct {
	state   *State
	timeout float64
}

// NewDecayTimer 创建衰减计时器，timeout <= 0 时使用默认值
func NewDecayTimer(state *State, timeout float64) *DecayTimer {
	if timeout <= 0 {
		timeout = DefaultDecayTimeout
	}
	return &DecayTimer{state: state, timeout: timeout}
}

// Timeout 返回超时时间（秒）
func (d *DecayTimer) Timeout() float64 {
	return d.timeout
}

// Update 每帧调用一次（在会话时钟推进之后）
// 返回 true 表示本帧触发了衰减
func (d *DecayTimer) Update() bool {
	snap := d.state.Snapshot()
	if snap.Emotion == EmotionNeutral {
		return false
	}
	if d.state.Now()-snap.ChangedAt < d.timeout {
		return false
	}
	return d.state.UpdateEmotion(EmotionNeutral, SourceDecay)
}

// Remaining 返回距离衰减还剩多少秒；当前为 neutral 时返回 0
func (d *DecayTimer) Remaining() float64 {
	snap := d.state.Snapshot()
	if snap.Emotion == EmotionNeutral {
		return 0
	}
	left := d.timeout - (d.state.Now() - snap.ChangedAt)
	if left < 0 {
		return 0
	}
	return left
}
