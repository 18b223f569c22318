package modules

import (
	"errors"
	"image"
	"image/color"
	"log"
	"math"

	"github.com/gonewx/slaglegion/pkg/chat"
	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/gonewx/slaglegion/pkg/systems"
	"github.com/gonewx/slaglegion/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	sidePanelAvatarLayer = 20

	// wheelScrollLines 滚轮一格滚动的行数
	wheelScrollLines = 3
	minThumbHeight   = 20.0
)

var (
	panelBackground = color.RGBA{R: 14, G: 16, B: 24, A: 255}
	logBackground   = color.RGBA{R: 22, G: 26, B: 38, A: 255}
	inputBackground = color.RGBA{R: 32, G: 36, B: 52, A: 255}
	inputBorder     = color.RGBA{R: 90, G: 110, B: 160, A: 255}
	scrollTrack     = color.RGBA{R: 40, G: 44, B: 60, A: 255}
	scrollThumb     = color.RGBA{R: 120, G: 130, B: 170, A: 255}

	captainColor = color.RGBA{R: 150, G: 200, B: 255, A: 255}
	lexiColor    = color.RGBA{R: 255, G: 190, B: 230, A: 255}
	systemColor  = color.RGBA{R: 170, G: 170, B: 170, A: 255}
)

// logLine 排版后的一行聊天记录
type logLine struct {
	text string
	clr  color.Color
}

// ChatPanelModule 右侧聊天面板
//
// 包含伴侣头像（side_panel 上下文）、可滚动的聊天记录和消息输入框。
// 作为输入路由的第一个消费者：输入框获得焦点时认领所有事件。
type ChatPanelModule struct {
	entityManager *ecs.EntityManager
	conversation  *chat.Conversation
	textInput     *systems.TextInputSystem

	avatar      *CompanionAvatar
	inputEntity ecs.EntityID

	lines         []logLine
	layoutVersion int

	scrollOffset float64 // 距离顶部的像素
	autoScroll   bool
	dragging     bool
	dragOffset   float64
}

// NewChatPanelModule 创建聊天面板
func NewChatPanelModule(
	em *ecs.EntityManager,
	source AnimationSource,
	state *companion.State,
	conversation *chat.Conversation,
	textInput *systems.TextInputSystem,
) *ChatPanelModule {
	m := &ChatPanelModule{
		entityManager: em,
		conversation:  conversation,
		textInput:     textInput,
		layoutVersion: -1,
		autoScroll:    true,
	}

	m.avatar = NewCompanionAvatar(em, source, state, companion.LocationSidePanel, sidePanelAvatarLayer,
		func(companion.Snapshot) (float64, float64, bool) {
			return config.ChatAvatarX, config.ChatAvatarY, true
		})

	m.inputEntity = em.CreateEntity()
	ecs.AddComponent(em, m.inputEntity, &components.TextInputComponent{
		MaxLength:   config.ChatInputMaxLen,
		Placeholder: "Click here to talk to Lexi...",
	})
	return m
}

// Avatar 返回面板头像
func (m *ChatPanelModule) Avatar() *CompanionAvatar {
	return m.avatar
}

func (m *ChatPanelModule) input() *components.TextInputComponent {
	ti, _ := ecs.GetComponent[*components.TextInputComponent](m.entityManager, m.inputEntity)
	return ti
}

// IsFocused 报告输入框是否有焦点（用于计算 Activation）
func (m *ChatPanelModule) IsFocused() bool {
	return m.input().IsFocused
}

// Focus 让输入框获得焦点
func (m *ChatPanelModule) Focus() {
	m.input().Focus()
}

// Blur 让输入框失去焦点
func (m *ChatPanelModule) Blur() {
	m.input().Blur()
}

// InputText 返回输入框中的文本
func (m *ChatPanelModule) InputText() string {
	return m.input().Text
}

// Name 实现 input.Claimant
func (m *ChatPanelModule) Name() string {
	return "ChatPanel"
}

// HandleEvent 处理面板内的指针事件，以及输入框有焦点时的所有事件
func (m *ChatPanelModule) HandleEvent(ev input.Event) bool {
	if m.handleScrollbarDrag(ev) {
		return true
	}

	if m.IsFocused() {
		m.handleFocused(ev)
		return true
	}

	switch ev.Kind {
	case input.PointerDown:
		if !config.InChatPanel(ev.X, ev.Y) {
			return false
		}
		if ev.Button == ebiten.MouseButtonLeft && config.InChatInput(ev.X, ev.Y) {
			m.Focus()
		}
		return true

	case input.PointerUp:
		return config.InChatPanel(ev.X, ev.Y)

	case input.Wheel:
		if !config.InChatPanel(ev.X, ev.Y) {
			return false
		}
		m.scrollBy(-ev.DeltaY * wheelScrollLines * config.ChatLineHeight)
		return true

	case input.KeyDown:
		if ev.IsKey(ebiten.KeyEnter) || ev.IsKey(ebiten.KeyNumpadEnter) {
			m.Focus()
			return true
		}
	}
	return false
}

// handleFocused 输入框有焦点时处理事件（全部认领）
func (m *ChatPanelModule) handleFocused(ev input.Event) {
	switch ev.Kind {
	case input.KeyDown:
		switch {
		case ev.IsKey(ebiten.KeyEnter), ev.IsKey(ebiten.KeyNumpadEnter):
			m.submit()
			return
		case ev.IsKey(ebiten.KeyEscape):
			m.Blur()
			return
		}

	case input.PointerDown:
		// 点击输入框以外的地方释放焦点，这次点击不再传给其他消费者
		if !config.InChatInput(ev.X, ev.Y) {
			m.Blur()
		}
		return

	case input.Wheel:
		if config.InChatPanel(ev.X, ev.Y) {
			m.scrollBy(-ev.DeltaY * wheelScrollLines * config.ChatLineHeight)
		}
		return
	}

	m.textInput.HandleEvent(m.inputEntity, ev)
}

func (m *ChatPanelModule) submit() {
	ti := m.input()
	if _, err := m.conversation.Send(ti.Text); err != nil {
		if !errors.Is(err, chat.ErrEmptyMessage) {
			log.Printf("[ChatPanel] Send failed: %v", err)
		}
		return
	}
	ti.Clear()
	m.autoScroll = true
}

// Update 更新光标闪烁，对话变化时重新排版
func (m *ChatPanelModule) Update(deltaTime float64) {
	m.textInput.Update(deltaTime)

	if v := m.conversation.Version(); v != m.layoutVersion {
		m.layoutVersion = v
		m.relayout()
	}
	if m.autoScroll {
		m.scrollOffset = m.maxScroll()
	}
}

// relayout 按面板宽度重新折行
func (m *ChatPanelModule) relayout() {
	m.lines = m.lines[:0]
	columns := config.ChatLogWrapColumns()

	for i, msg := range m.conversation.Messages() {
		if i > 0 {
			m.lines = append(m.lines, logLine{})
		}

		var prefix string
		var clr color.Color
		switch msg.Role {
		case chat.RoleUser:
			prefix, clr = "Captain: ", captainColor
		case chat.RoleAgent:
			prefix, clr = "Lexi: ", lexiColor
		default:
			prefix, clr = "", systemColor
		}

		content := msg.Content
		if msg.Pending {
			content = "..."
		}
		for _, l := range utils.WrapText(prefix+content, columns) {
			m.lines = append(m.lines, logLine{text: l, clr: clr})
		}
	}
}

// Lines 返回排版后的聊天记录
func (m *ChatPanelModule) Lines() []string {
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		out[i] = l.text
	}
	return out
}

func viewHeight() float64 {
	return config.ChatLogHeight() - 2*config.ChatLogPadding
}

func (m *ChatPanelModule) contentHeight() float64 {
	return float64(len(m.lines)) * config.ChatLineHeight
}

func (m *ChatPanelModule) maxScroll() float64 {
	return math.Max(0, m.contentHeight()-viewHeight())
}

// ScrollOffset 返回当前滚动位置（像素）
func (m *ChatPanelModule) ScrollOffset() float64 {
	return m.scrollOffset
}

// AutoScroll 报告是否跟随最新消息
func (m *ChatPanelModule) AutoScroll() bool {
	return m.autoScroll
}

// scrollBy 滚动 delta 像素；滚到底部时恢复自动跟随
func (m *ChatPanelModule) scrollBy(delta float64) {
	m.scrollTo(m.scrollOffset + delta)
}

func (m *ChatPanelModule) scrollTo(offset float64) {
	maxScroll := m.maxScroll()
	m.scrollOffset = math.Max(0, math.Min(offset, maxScroll))
	m.autoScroll = m.scrollOffset >= maxScroll
}

// scrollbarTrack 滚动条轨道 (x, y, w, h)
func scrollbarTrack() (float64, float64, float64, float64) {
	x := config.ScreenWidth - config.ChatLogPadding - config.ChatScrollbarWidth
	return x, config.ChatLogTop, config.ChatScrollbarWidth, config.ChatLogHeight()
}

// scrollbarThumb 返回滑块的 y 和高度，内容不足一屏时 ok 为 false
func (m *ChatPanelModule) scrollbarThumb() (y, h float64, ok bool) {
	maxScroll := m.maxScroll()
	if maxScroll <= 0 {
		return 0, 0, false
	}
	_, trackY, _, trackH := scrollbarTrack()
	h = math.Max(minThumbHeight, trackH*viewHeight()/m.contentHeight())
	y = trackY + (m.scrollOffset/maxScroll)*(trackH-h)
	return y, h, true
}

// handleScrollbarDrag 处理滚动条拖动，拖动期间认领所有指针事件
func (m *ChatPanelModule) handleScrollbarDrag(ev input.Event) bool {
	switch ev.Kind {
	case input.PointerDown:
		if ev.Button != ebiten.MouseButtonLeft {
			return false
		}
		tx, ty, tw, th := scrollbarTrack()
		if !utils.PointInRect(ev.X, ev.Y, tx, ty, tw, th) {
			return false
		}
		thumbY, thumbH, ok := m.scrollbarThumb()
		if !ok {
			return true
		}
		if ev.Y < thumbY || ev.Y >= thumbY+thumbH {
			// 点击轨道：滑块中心跳到点击位置
			m.dragOffset = thumbH / 2
			m.dragThumbTo(ev.Y)
		} else {
			m.dragOffset = ev.Y - thumbY
		}
		m.dragging = true
		return true

	case input.PointerMove:
		if m.dragging {
			m.dragThumbTo(ev.Y)
			return true
		}

	case input.PointerUp:
		if m.dragging {
			m.dragging = false
			return true
		}
	}
	return false
}

func (m *ChatPanelModule) dragThumbTo(pointerY float64) {
	_, thumbH, ok := m.scrollbarThumb()
	if !ok {
		return
	}
	_, trackY, _, trackH := scrollbarTrack()
	ratio := (pointerY - m.dragOffset - trackY) / (trackH - thumbH)
	m.scrollTo(ratio * m.maxScroll())
}

// Draw 绘制面板背景、聊天记录、滚动条和输入框（头像由 RenderSystem 绘制）
func (m *ChatPanelModule) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, config.ChatPanelX, 0, config.ChatPanelWidth, config.ScreenHeight, panelBackground, false)
	vector.DrawFilledRect(screen, config.ChatPanelX+config.ChatLogPadding, config.ChatLogTop,
		config.ChatPanelWidth-2*config.ChatLogPadding, float32(config.ChatLogHeight()), logBackground, false)

	m.drawLog(screen)
	m.drawScrollbar(screen)
	m.drawInput(screen)
}

func (m *ChatPanelModule) drawLog(screen *ebiten.Image) {
	top := config.ChatLogTop + config.ChatLogPadding
	clip := image.Rect(
		int(config.ChatPanelX+config.ChatLogPadding), int(top),
		int(config.ScreenWidth-config.ChatLogPadding-config.ChatScrollbarWidth), int(top+viewHeight()),
	)
	dst := screen.SubImage(clip).(*ebiten.Image)
	face := utils.DefaultFace()

	first := int(m.scrollOffset / config.ChatLineHeight)
	for i := first; i < len(m.lines); i++ {
		y := top + float64(i)*config.ChatLineHeight - m.scrollOffset
		if y > top+viewHeight() {
			break
		}
		l := m.lines[i]
		if l.text == "" {
			continue
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(config.ChatPanelX+config.ChatLogPadding+4, y)
		op.ColorScale.ScaleWithColor(l.clr)
		text.Draw(dst, l.text, face, op)
	}
}

func (m *ChatPanelModule) drawScrollbar(screen *ebiten.Image) {
	tx, ty, tw, th := scrollbarTrack()
	vector.DrawFilledRect(screen, float32(tx), float32(ty), float32(tw), float32(th), scrollTrack, false)
	if y, h, ok := m.scrollbarThumb(); ok {
		vector.DrawFilledRect(screen, float32(tx), float32(y), float32(tw), float32(h), scrollThumb, false)
	}
}

func (m *ChatPanelModule) drawInput(screen *ebiten.Image) {
	x := float32(config.ChatPanelX + config.ChatLogPadding)
	w := float32(config.ChatPanelWidth - 2*config.ChatLogPadding)
	vector.DrawFilledRect(screen, x, config.ChatInputY, w, config.ChatInputHeight, inputBackground, false)

	face := utils.DefaultFace()
	if m.conversation.Pending() {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x), config.ChatInputY-16)
		op.ColorScale.ScaleWithColor(systemColor)
		text.Draw(screen, "Lexi is typing...", face, op)
	}

	ti := m.input()
	if ti.IsFocused {
		vector.StrokeRect(screen, x, config.ChatInputY, w, config.ChatInputHeight, 1, inputBorder, false)
	}

	clip := image.Rect(int(x), int(config.ChatInputY), int(x+w), int(config.ChatInputY+config.ChatInputHeight))
	dst := screen.SubImage(clip).(*ebiten.Image)

	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x)+6, config.ChatInputY+(config.ChatInputHeight-13)/2)

	if ti.Text == "" && !ti.IsFocused {
		op.ColorScale.ScaleWithColor(systemColor)
		text.Draw(dst, ti.Placeholder, face, op)
		return
	}

	// 光标之前只保留能放下的部分，光标之后超出的部分被裁掉
	runes := []rune(ti.Text)
	cursor := min(max(ti.CursorPosition, 0), len(runes))
	beforeCursor := utils.TruncateLeft(string(runes[:cursor]), face, float64(w)-16)

	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(dst, beforeCursor+string(runes[cursor:]), face, op)

	if ti.CursorVisible {
		cx := x + 6 + float32(utils.MeasureText(beforeCursor, face))
		vector.StrokeLine(dst, cx, config.ChatInputY+8, cx, config.ChatInputY+config.ChatInputHeight-8, 1, color.White, false)
	}
}

// Cleanup 取消头像订阅并销毁实体
func (m *ChatPanelModule) Cleanup() {
	m.avatar.Cleanup()
	m.entityManager.DestroyEntity(m.inputEntity)
}
