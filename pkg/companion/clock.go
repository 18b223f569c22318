package companion

// Clock 会话时钟（秒），由主循环每帧推进一次
//
// 使用游戏时间而不是墙钟，暂停、调试单步和测试都能得到确定的结果。
type Clock struct {
	now float64
}

// NewClock 创建从 0 开始的会话时钟
func NewClock() *Clock {
	return &Clock{}
}

// Advance 推进 dt 秒，负值被忽略
func (c *Clock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}

// Now 返回会话开始以来的秒数
func (c *Clock) Now() float64 {
	return c.now
}
