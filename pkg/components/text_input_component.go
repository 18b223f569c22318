package components

// TextInputComponent 单行文本输入框
// 聊天面板底部的消息输入框使用它
type TextInputComponent struct {
	Text           string // 当前输入的文本
	CursorPosition int    // 光标位置（字符索引，不是字节）

	// 光标闪烁
	CursorVisible    bool
	CursorBlinkTimer float64

	MaxLength   int    // 最大字符数（0 = 无限制）
	Placeholder string // 输入框为空且没有焦点时显示

	IsFocused bool // 获得焦点时接收键盘输入，并屏蔽其他输入消费者
}

// Focus 获得焦点，光标立即可见
func (c *TextInputComponent) Focus() {
	c.IsFocused = true
	c.CursorVisible = true
	c.CursorBlinkTimer = 0
}

// Blur 失去焦点
func (c *TextInputComponent) Blur() {
	c.IsFocused = false
	c.CursorVisible = false
}

// Clear 清空文本并把光标移回开头
func (c *TextInputComponent) Clear() {
	c.Text = ""
	c.CursorPosition = 0
}
