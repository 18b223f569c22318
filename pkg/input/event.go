// Package input 负责把 Ebitengine 的轮询式输入转换为有序事件，
// 并按固定优先级分发给聊天界面、飞行控制和房间导航。
package input

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Kind 输入事件类型
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	TextInput
	PointerMove
	PointerDown
	PointerUp
	Wheel
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	case TextInput:
		return "TextInput"
	case PointerMove:
		return "PointerMove"
	case PointerDown:
		return "PointerDown"
	case PointerUp:
		return "PointerUp"
	case Wheel:
		return "Wheel"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event 一条输入事件
// 只有与 Kind 相关的字段有意义
type Event struct {
	Kind Kind

	// 键盘
	Key    ebiten.Key
	Repeat bool // 按住不放产生的重复 KeyDown
	Ctrl   bool // 事件发生时 Ctrl（或 macOS 上的 Meta）是否按下

	// 文本
	Text string

	// 指针（屏幕坐标）
	X, Y   float64
	Button ebiten.MouseButton

	// 滚轮
	DeltaX, DeltaY float64
}

// IsKey 报告事件是否为 key 的（非重复）按下
func (e Event) IsKey(key ebiten.Key) bool {
	return e.Kind == KeyDown && e.Key == key && !e.Repeat
}

// IsPointer 报告事件是否携带指针坐标
func (e Event) IsPointer() bool {
	switch e.Kind {
	case PointerMove, PointerDown, PointerUp, Wheel:
		return true
	}
	return false
}

func (e Event) String() string {
	switch e.Kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s(%s repeat=%v)", e.Kind, e.Key, e.Repeat)
	case TextInput:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Text)
	case Wheel:
		return fmt.Sprintf("%s(%.1f,%.1f @ %.0f,%.0f)", e.Kind, e.DeltaX, e.DeltaY, e.X, e.Y)
	}
	return fmt.Sprintf("%s(%.0f,%.0f)", e.Kind, e.X, e.Y)
}
