package scenes

import (
	"log"

	"github.com/gonewx/slaglegion/pkg/chat"
	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/gonewx/slaglegion/pkg/game"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/gonewx/slaglegion/pkg/modules"
	"github.com/gonewx/slaglegion/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
)

// EventSource 每帧提供输入事件（*input.Collector 实现了它）
type EventSource interface {
	Collect() []input.Event
}

// ShipScene 飞船内部场景：房间视图、伴侣头像、聊天面板和飞行控制
//
// 所有伴侣状态修改都发生在 Update 中：
// 聊天回复的情绪先进入 Inbox，在帧开始时统一投递。
type ShipScene struct {
	clock        *companion.Clock
	state        *companion.State
	inbox        *companion.Inbox
	decay        *companion.DecayTimer
	conversation *chat.Conversation
	settings     *game.SettingsManager

	entityManager   *ecs.EntityManager
	animationSystem *systems.AnimationSystem
	renderSystem    *systems.RenderSystem
	flight          *systems.FlightControlSystem
	navigation      *systems.RoomNavigationSystem

	chatPanel    *modules.ChatPanelModule
	roomAvatars  []*modules.RoomAvatarModule
	debugOverlay *modules.DebugOverlayModule

	gate   *input.Gate
	router *input.Router
	events EventSource

	closed bool
}

// Update 推进一帧
//
// 顺序：时钟 -> 投递情绪 -> 输入 -> 衰减 -> 飞行 -> 界面 -> 动画。
// 输入在衰减之前处理，同一帧里玩家触发的变化优先。
func (s *ShipScene) Update(deltaTime float64) {
	if s.closed {
		return
	}
	s.clock.Advance(deltaTime)

	if reports := s.inbox.Drain(); len(reports) > 0 {
		companion.Deliver(s.state, reports)
	}

	s.router.Refresh()
	s.router.RouteAll(s.events.Collect())

	s.decay.Update()
	s.flight.Update(deltaTime)
	s.chatPanel.Update(deltaTime)
	s.animationSystem.Update(deltaTime)
	s.entityManager.RemoveMarkedEntities()
}

// Draw 绘制房间、精灵（头像）、聊天面板和调试层
func (s *ShipScene) Draw(screen *ebiten.Image) {
	s.navigation.Draw(screen)
	s.renderSystem.Draw(screen)
	s.chatPanel.Draw(screen)
	s.debugOverlay.Draw(screen)
}

// State 返回伴侣状态
func (s *ShipScene) State() *companion.State {
	return s.state
}

// Navigation 返回房间导航系统
func (s *ShipScene) Navigation() *systems.RoomNavigationSystem {
	return s.navigation
}

// ChatPanel 返回聊天面板
func (s *ShipScene) ChatPanel() *modules.ChatPanelModule {
	return s.chatPanel
}

// Flight 返回飞行控制系统
func (s *ShipScene) Flight() *systems.FlightControlSystem {
	return s.flight
}

// DebugOverlay 返回调试覆盖层
func (s *ShipScene) DebugOverlay() *modules.DebugOverlayModule {
	return s.debugOverlay
}

// Close 取消所有订阅、停止未完成的回复并保存设置
func (s *ShipScene) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.chatPanel.Cleanup()
	for _, m := range s.roomAvatars {
		m.Cleanup()
	}
	s.conversation.Close()

	if s.settings != nil {
		if err := s.settings.Save(); err != nil {
			log.Printf("[ShipScene] Warning: failed to save settings: %v", err)
		}
	}
	log.Printf("[ShipScene] Closed (%d subscribers left)", s.state.SubscriberCount())
}
