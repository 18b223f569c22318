package components

import "github.com/hajimehoshi/ebiten/v2"

// LoopMode 动画播放到末尾后的行为
type LoopMode string

const (
	LoopOnce          LoopMode = "once"            // 停在最后一帧并标记完成
	LoopRepeat        LoopMode = "loop"            // 回到第 0 帧
	LoopPingPong      LoopMode = "ping_pong"       // 在首尾之间往返
	LoopHoldLastFrame LoopMode = "hold_last_frame" // 冻结在保持帧，之后仍可被替换
)

// Valid 报告播放模式是否合法
func (m LoopMode) Valid() bool {
	switch m {
	case LoopOnce, LoopRepeat, LoopPingPong, LoopHoldLastFrame:
		return true
	}
	return false
}

// AnimationClip 一段已解码的帧动画
//
// 由 AnimationResolver 按 (location, key) 缓存，多个播放游标共享同一份帧列表，
// 创建后不可修改。
type AnimationClip struct {
	Key           string          // 配置中的动画键，例如 "side_happy"
	Location      string          // 视觉上下文：side_panel 或房间 ID
	Frames        []*ebiten.Image // 已按 start_frame/end_frame 裁剪的帧
	FrameDuration float64         // 每帧时长（秒）
	Loop          LoopMode
	HoldFrame     int // 播放结束后保持显示的帧索引，-1 表示最后一帧
}

// holdIndex 返回结束后应显示的帧
func (c *AnimationClip) holdIndex() int {
	last := len(c.Frames) - 1
	if c.HoldFrame >= 0 && c.HoldFrame <= last {
		return c.HoldFrame
	}
	return last
}

// AnimationComponent 单个面板的播放游标
// 帧数据来自共享的 Clip，游标状态每次解析都是全新的
type AnimationComponent struct {
	Clip         *AnimationClip
	FrameCounter float64 // 当前帧计时器(秒)
	CurrentFrame int     // 当前显示的帧索引(0-based)
	Direction    int     // ping_pong 的方向：+1 / -1
	IsFinished   bool    // once 播放完成
	IsHeld       bool    // hold_last_frame 已冻结
}

// NewPlayback 为 clip 创建从第 0 帧开始的新游标
func NewPlayback(clip *AnimationClip) *AnimationComponent {
	return &AnimationComponent{
		Clip:      clip,
		Direction: 1,
	}
}

// Key 返回当前播放的动画键，没有 clip 时返回空字符串
func (a *AnimationComponent) Key() string {
	if a == nil || a.Clip == nil {
		return ""
	}
	return a.Clip.Key
}

// CurrentImage 返回当前应绘制的帧
func (a *AnimationComponent) CurrentImage() *ebiten.Image {
	if a == nil || a.Clip == nil || len(a.Clip.Frames) == 0 {
		return nil
	}
	idx := a.CurrentFrame
	if idx < 0 || idx >= len(a.Clip.Frames) {
		idx = 0
	}
	return a.Clip.Frames[idx]
}

// Advance 按播放模式推进 dt 秒
//
// 一次调用可能跨越多帧（低帧率或调试单步）。返回 true 表示显示的帧发生了变化。
func (a *AnimationComponent) Advance(dt float64) bool {
	if a.Clip == nil || len(a.Clip.Frames) == 0 || dt <= 0 {
		return false
	}
	if a.IsFinished || a.IsHeld {
		return false
	}

	n := len(a.Clip.Frames)
	if n == 1 {
		a.settle()
		return false
	}

	step := a.Clip.FrameDuration
	if step <= 0 {
		step = 0.1
	}

	a.FrameCounter += dt
	before := a.CurrentFrame
	for a.FrameCounter >= step {
		a.FrameCounter -= step
		if !a.step(n) {
			a.FrameCounter = 0
			break
		}
	}
	return a.CurrentFrame != before
}

// step 前进一帧，返回 false 表示动画已停止
func (a *AnimationComponent) step(n int) bool {
	switch a.Clip.Loop {
	case LoopRepeat:
		a.CurrentFrame = (a.CurrentFrame + 1) % n

	case LoopPingPong:
		if a.Direction == 0 {
			a.Direction = 1
		}
		next := a.CurrentFrame + a.Direction
		if next >= n || next < 0 {
			a.Direction = -a.Direction
			next = a.CurrentFrame + a.Direction
		}
		a.CurrentFrame = next

	default: // once / hold_last_frame
		if a.CurrentFrame+1 >= n {
			a.settle()
			return false
		}
		a.CurrentFrame++
		if a.CurrentFrame == n-1 {
			a.settle()
			return false
		}
	}
	return true
}

// settle 处理不循环动画到达末尾
func (a *AnimationComponent) settle() {
	switch a.Clip.Loop {
	case LoopOnce:
		a.CurrentFrame = len(a.Clip.Frames) - 1
		a.IsFinished = true
	case LoopHoldLastFrame:
		a.CurrentFrame = a.Clip.holdIndex()
		a.IsHeld = true
	}
}
