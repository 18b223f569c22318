package input

import (
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// repeatKeys 按住时需要产生重复事件的编辑键
var repeatKeys = []ebiten.Key{
	ebiten.KeyBackspace,
	ebiten.KeyDelete,
	ebiten.KeyArrowLeft,
	ebiten.KeyArrowRight,
}

// Collector 每帧把 Ebitengine 的输入状态转换为事件列表
//
// 轮询模型没有真正的到达时间，同一帧内按固定顺序产生：
// 指针移动 -> 鼠标按下 -> 滚轮 -> 按键按下 -> 文本 -> 按键松开 -> 鼠标松开。
type Collector struct {
	lastX, lastY int
	hasCursor    bool

	keys  []ebiten.Key
	runes []rune
}

// NewCollector 创建输入收集器
func NewCollector() *Collector {
	return &Collector{}
}

// Collect 读取本帧输入，必须在 Update 中调用
func (c *Collector) Collect() []Event {
	var events []Event

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	if !c.hasCursor || cx != c.lastX || cy != c.lastY {
		c.lastX, c.lastY = cx, cy
		c.hasCursor = true
		events = append(events, Event{Kind: PointerMove, X: x, Y: y})
	}

	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		if inpututil.IsMouseButtonJustPressed(b) {
			events = append(events, Event{Kind: PointerDown, Button: b, X: x, Y: y})
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		events = append(events, Event{Kind: Wheel, DeltaX: dx, DeltaY: dy, X: x, Y: y})
	}

	ctrl := ctrlPressed()

	c.keys = inpututil.AppendJustPressedKeys(c.keys[:0])
	for _, k := range c.keys {
		events = append(events, Event{Kind: KeyDown, Key: k, Ctrl: ctrl})
	}
	// 第1帧由 JustPressed 产生，之后每隔3帧重复一次（与文本输入框的连续删除一致）
	for _, k := range repeatKeys {
		d := inpututil.KeyPressDuration(k)
		if d >= 30 && d%3 == 0 {
			events = append(events, Event{Kind: KeyDown, Key: k, Repeat: true, Ctrl: ctrl})
		}
	}

	c.runes = ebiten.AppendInputChars(c.runes[:0])
	if len(c.runes) > 0 && !ctrl {
		events = append(events, Event{Kind: TextInput, Text: string(c.runes)})
	}

	c.keys = inpututil.AppendJustReleasedKeys(c.keys[:0])
	for _, k := range c.keys {
		events = append(events, Event{Kind: KeyUp, Key: k, Ctrl: ctrl})
	}

	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		if inpututil.IsMouseButtonJustReleased(b) {
			events = append(events, Event{Kind: PointerUp, Button: b, X: x, Y: y})
		}
	}

	return events
}

func ctrlPressed() bool {
	if runtime.GOOS == "darwin" && ebiten.IsKeyPressed(ebiten.KeyMeta) {
		return true
	}
	return ebiten.IsKeyPressed(ebiten.KeyControl)
}
