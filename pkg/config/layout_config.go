package config

// 布局配置常量
// 本文件定义了飞船场景的屏幕布局，所有坐标均为屏幕坐标（窗口左上角为原点）

// Window
const (
	ScreenWidth  = 1300
	ScreenHeight = 700
)

// 中央房间视图
const (
	// RoomImageX 房间背景图左上角X坐标
	RoomImageX = 420.0
	// RoomImageY 房间背景图左上角Y坐标
	RoomImageY = 121.0

	// RoomTitleY 房间名称文字的基线位置
	RoomTitleY = 90.0
)

// 右侧聊天面板
const (
	// ChatPanelX 面板左边界，面板一直延伸到窗口右边缘
	ChatPanelX     = 943.0
	ChatPanelWidth = ScreenWidth - ChatPanelX

	// ChatAvatarX / ChatAvatarY 面板头像位置
	ChatAvatarX = 1046.0
	ChatAvatarY = 22.0

	// ChatLogTop 聊天记录区域顶部（头像下方）
	ChatLogTop     = 300.0
	ChatLogBottom  = 630.0
	ChatLogPadding = 10.0

	// ChatLineHeight 聊天记录每行高度（basicfont 7x13）
	ChatLineHeight = 16.0

	// ChatScrollbarWidth 滚动条宽度
	ChatScrollbarWidth = 8.0

	// ChatInputY 输入框顶部
	ChatInputY      = 645.0
	ChatInputHeight = 40.0
	ChatInputMaxLen = 500
)

// 调试覆盖层
const (
	DebugOverlayX = 10.0
	DebugOverlayY = 10.0
)

// ChatLogHeight 返回聊天记录区域高度
func ChatLogHeight() float64 {
	return ChatLogBottom - ChatLogTop
}

// ChatLogWrapColumns 返回聊天记录按字符换行的列数
// basicfont.Face7x13 是等宽字体，每个字符 7 像素
func ChatLogWrapColumns() int {
	usable := ChatPanelWidth - 2*ChatLogPadding - ChatScrollbarWidth
	return int(usable / 7)
}

// InChatPanel 报告屏幕坐标是否位于右侧面板内
func InChatPanel(x, y float64) bool {
	return x >= ChatPanelX && x < ScreenWidth && y >= 0 && y < ScreenHeight
}

// InChatInput 报告屏幕坐标是否位于输入框内
func InChatInput(x, y float64) bool {
	return x >= ChatPanelX+ChatLogPadding && x < ScreenWidth-ChatLogPadding &&
		y >= ChatInputY && y < ChatInputY+ChatInputHeight
}
