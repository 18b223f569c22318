package systems

import (
	"log"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/hajimehoshi/ebiten/v2"
)

// cursorBlinkInterval 光标闪烁间隔（秒）
const cursorBlinkInterval = 0.5

// TextInputSystem 文本输入系统
// 把路由过来的键盘事件应用到文本输入框，并处理光标闪烁
type TextInputSystem struct {
	entityManager *ecs.EntityManager
	paste         func() (string, error)
}

// NewTextInputSystem 创建文本输入系统，Ctrl+V 从系统剪贴板读取
func NewTextInputSystem(em *ecs.EntityManager) *TextInputSystem {
	return &TextInputSystem{
		entityManager: em,
		paste:         clipboard.ReadAll,
	}
}

// SetPasteSource 替换剪贴板读取函数（测试或不支持剪贴板的平台）
func (s *TextInputSystem) SetPasteSource(fn func() (string, error)) {
	s.paste = fn
}

// Update 更新所有输入框的光标闪烁
func (s *TextInputSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith1[*components.TextInputComponent](s.entityManager)

	for _, entityID := range entities {
		ti, ok := ecs.GetComponent[*components.TextInputComponent](s.entityManager, entityID)
		if !ok {
			continue
		}
		if !ti.IsFocused {
			ti.CursorVisible = false
			continue
		}

		ti.CursorBlinkTimer += deltaTime
		if ti.CursorBlinkTimer >= cursorBlinkInterval {
			ti.CursorBlinkTimer = 0
			ti.CursorVisible = !ti.CursorVisible
		}
	}
}

// HandleEvent 把事件应用到实体 id 的输入框
// 返回 true 表示文本或光标发生了变化。没有焦点的输入框不处理任何事件。
func (s *TextInputSystem) HandleEvent(id ecs.EntityID, ev input.Event) bool {
	ti, ok := ecs.GetComponent[*components.TextInputComponent](s.entityManager, id)
	if !ok || !ti.IsFocused {
		return false
	}
	clampCursor(ti)

	changed := false
	switch ev.Kind {
	case input.TextInput:
		changed = s.insertText(ti, ev.Text)

	case input.KeyDown:
		switch {
		case ev.Key == ebiten.KeyV && ev.Ctrl:
			changed = s.pasteText(ti)
		case ev.Key == ebiten.KeyBackspace:
			changed = deleteCharBefore(ti)
		case ev.Key == ebiten.KeyDelete:
			changed = deleteCharAfter(ti)
		case ev.Key == ebiten.KeyArrowLeft:
			changed = moveCursor(ti, -1)
		case ev.Key == ebiten.KeyArrowRight:
			changed = moveCursor(ti, 1)
		case ev.Key == ebiten.KeyHome:
			changed = ti.CursorPosition != 0
			ti.CursorPosition = 0
		case ev.Key == ebiten.KeyEnd:
			end := len([]rune(ti.Text))
			changed = ti.CursorPosition != end
			ti.CursorPosition = end
		}
	}

	if changed {
		// 编辑时光标保持可见
		ti.CursorBlinkTimer = 0
		ti.CursorVisible = true
	}
	return changed
}

func (s *TextInputSystem) pasteText(ti *components.TextInputComponent) bool {
	if s.paste == nil {
		return false
	}
	content, err := s.paste()
	if err != nil {
		log.Printf("[TextInputSystem] Clipboard unavailable: %v", err)
		return false
	}
	// 单行输入框：换行折叠为空格
	content = strings.Join(strings.Fields(content), " ")
	return s.insertText(ti, content)
}

// insertText 在光标位置插入文本，丢弃控制字符，超出长度限制的部分被截断
func (s *TextInputSystem) insertText(ti *components.TextInputComponent, text string) bool {
	newRunes := make([]rune, 0, len(text))
	for _, r := range text {
		if unicode.IsPrint(r) {
			newRunes = append(newRunes, r)
		}
	}
	if len(newRunes) == 0 {
		return false
	}

	runes := []rune(ti.Text)
	if ti.MaxLength > 0 {
		room := ti.MaxLength - len(runes)
		if room <= 0 {
			log.Printf("[TextInputSystem] 达到最大长度限制 (%d 字符)", ti.MaxLength)
			return false
		}
		if len(newRunes) > room {
			newRunes = newRunes[:room]
		}
	}

	result := make([]rune, 0, len(runes)+len(newRunes))
	result = append(result, runes[:ti.CursorPosition]...)
	result = append(result, newRunes...)
	result = append(result, runes[ti.CursorPosition:]...)

	ti.Text = string(result)
	ti.CursorPosition += len(newRunes)
	return true
}

// deleteCharBefore 删除光标前的字符（退格）
func deleteCharBefore(ti *components.TextInputComponent) bool {
	if ti.CursorPosition == 0 {
		return false
	}
	runes := []rune(ti.Text)
	ti.Text = string(append(runes[:ti.CursorPosition-1:ti.CursorPosition-1], runes[ti.CursorPosition:]...))
	ti.CursorPosition--
	return true
}

// deleteCharAfter 删除光标后的字符（Delete键），光标位置不变
func deleteCharAfter(ti *components.TextInputComponent) bool {
	runes := []rune(ti.Text)
	if ti.CursorPosition >= len(runes) {
		return false
	}
	ti.Text = string(append(runes[:ti.CursorPosition:ti.CursorPosition], runes[ti.CursorPosition+1:]...))
	return true
}

func moveCursor(ti *components.TextInputComponent, delta int) bool {
	next := ti.CursorPosition + delta
	if next < 0 || next > len([]rune(ti.Text)) {
		return false
	}
	ti.CursorPosition = next
	return true
}

func clampCursor(ti *components.TextInputComponent) {
	n := len([]rune(ti.Text))
	if ti.CursorPosition > n {
		ti.CursorPosition = n
	}
	if ti.CursorPosition < 0 {
		ti.CursorPosition = 0
	}
}
