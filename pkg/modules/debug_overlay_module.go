package modules

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/gonewx/slaglegion/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// debugHistoryLines 覆盖层显示的状态历史条数
const debugHistoryLines = 8

// DebugSources 调试覆盖层读取的数据来源，字段可为 nil
type DebugSources struct {
	State   *companion.State
	Decay   *companion.DecayTimer
	Router  *input.Router
	Flight  *systems.FlightControlSystem
	Avatars []*CompanionAvatar
}

// DebugOverlayModule F1 切换的调试覆盖层
type DebugOverlayModule struct {
	sources  DebugSources
	visible  bool
	onToggle func(visible bool)
}

// NewDebugOverlayModule 创建调试覆盖层
func NewDebugOverlayModule(sources DebugSources, visible bool, onToggle func(visible bool)) *DebugOverlayModule {
	return &DebugOverlayModule{
		sources:  sources,
		visible:  visible,
		onToggle: onToggle,
	}
}

// IsActive 报告覆盖层是否显示
func (m *DebugOverlayModule) IsActive() bool {
	return m.visible
}

// Toggle 切换显示
func (m *DebugOverlayModule) Toggle() {
	m.visible = !m.visible
	if m.onToggle != nil {
		m.onToggle(m.visible)
	}
}

// Name 实现 input.Claimant
func (m *DebugOverlayModule) Name() string {
	return "DebugOverlay"
}

// HandleEvent 认领 F1
func (m *DebugOverlayModule) HandleEvent(ev input.Event) bool {
	if ev.IsKey(ebiten.KeyF1) {
		m.Toggle()
		return true
	}
	return false
}

// Lines 返回覆盖层的文本内容
func (m *DebugOverlayModule) Lines() []string {
	var lines []string
	src := m.sources

	if src.State != nil {
		snap := src.State.Snapshot()
		lines = append(lines,
			fmt.Sprintf("t=%.1fs  emotion=%s  pose=%s  location=%s", src.State.Now(), snap.Emotion, snap.Pose, snap.Location),
			fmt.Sprintf("changed_at=%.1fs  subscribers=%d", snap.ChangedAt, src.State.SubscriberCount()),
		)
	}
	if src.Decay != nil {
		lines = append(lines, fmt.Sprintf("decay in %.1fs (timeout %.0fs)", src.Decay.Remaining(), src.Decay.Timeout()))
	}
	for _, a := range src.Avatars {
		anim := a.Playback()
		frame := 0
		if anim != nil {
			frame = anim.CurrentFrame
		}
		lines = append(lines, fmt.Sprintf("[%s] %s frame=%d visible=%v", a.Location(), a.Key(), frame, a.Visible()))
	}
	if src.Router != nil {
		act := src.Router.Activation()
		lines = append(lines, fmt.Sprintf("room=%s chat_focused=%v flight=%v nav=%v",
			act.Room, act.ChatFocused, act.FlightEligible, act.NavigationEligible))
	}
	if src.Flight != nil {
		if f := src.Flight.Flight(); f != nil {
			lines = append(lines,
				fmt.Sprintf("speed=%d (%.0f px/s) target=%v", f.Speed, f.MoveSpeed(), f.Targeting),
				fmt.Sprintf("world=(%.0f, %.0f) heading=%.0f intent=(%.0f, %.0f, %.0f)",
					f.WorldX, f.WorldY, f.Heading, f.MoveX, f.MoveY, f.Rotate),
			)
		}
	}

	if src.State != nil {
		history := src.State.History()
		if len(history) > debugHistoryLines {
			history = history[len(history)-debugHistoryLines:]
		}
		if len(history) > 0 {
			lines = append(lines, "history:")
		}
		for _, c := range history {
			lines = append(lines, fmt.Sprintf("  %6.1fs %-8s %-6s %s", c.At, c.Kind, c.Source, describeChange(c)))
		}
	}
	return lines
}

func describeChange(c companion.Change) string {
	switch c.Kind {
	case companion.ChangeEmotion:
		return fmt.Sprintf("%s -> %s", c.Previous.Emotion, c.Current.Emotion)
	case companion.ChangePose:
		return fmt.Sprintf("%s -> %s", c.Previous.Pose, c.Current.Pose)
	case companion.ChangeLocation:
		return fmt.Sprintf("%s -> %s", c.Previous.Location, c.Current.Location)
	}
	return ""
}

// Draw 在左上角绘制覆盖层
func (m *DebugOverlayModule) Draw(screen *ebiten.Image) {
	if !m.visible {
		return
	}
	lines := m.Lines()
	lines = append(lines, fmt.Sprintf("TPS %.0f  FPS %.0f", ebiten.ActualTPS(), ebiten.ActualFPS()))

	h := float32(len(lines)*16 + 8)
	vector.DrawFilledRect(screen, config.DebugOverlayX-4, config.DebugOverlayY-4, 400, h, color.RGBA{A: 180}, false)
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), config.DebugOverlayX, config.DebugOverlayY)
}
