package scenes

import (
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/slaglegion/pkg/chat"
	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/gonewx/slaglegion/pkg/game"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/gonewx/slaglegion/pkg/modules"
	"github.com/gonewx/slaglegion/pkg/systems"
)

// ShipSceneConfig 创建飞船场景所需的依赖
type ShipSceneConfig struct {
	Ship         *config.ShipConfig
	Animations   modules.AnimationSource // 通常是 *game.AnimationResolver
	Images       systems.ImageLoader     // 房间背景，通常是 *game.ResourceManager
	Conversation *chat.Conversation      // 情绪标签必须上报给 Inbox
	Inbox        *companion.Inbox

	// 可选
	Settings     *game.SettingsManager
	Events       EventSource // 默认 input.NewCollector()
	Clock        *companion.Clock
	DecayTimeout float64 // 秒，<= 0 使用默认值
}

// NewShipScene 创建飞船场景并连接所有模块
func NewShipScene(cfg ShipSceneConfig) (*ShipScene, error) {
	var errs []error
	if cfg.Ship == nil {
		errs = append(errs, errors.New("ship config is required"))
	}
	if cfg.Animations == nil {
		errs = append(errs, errors.New("animation source is required"))
	}
	if cfg.Conversation == nil {
		errs = append(errs, errors.New("conversation is required"))
	}
	if cfg.Inbox == nil {
		errs = append(errs, errors.New("emotion inbox is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid ship scene config: %w", err)
	}

	if cfg.Clock == nil {
		cfg.Clock = companion.NewClock()
	}
	if cfg.Events == nil {
		cfg.Events = input.NewCollector()
	}

	s := &ShipScene{
		clock:        cfg.Clock,
		state:        companion.NewState(cfg.Clock, companion.Location(cfg.Ship.StartRoom)),
		inbox:        cfg.Inbox,
		conversation: cfg.Conversation,
		settings:     cfg.Settings,
		events:       cfg.Events,
		gate:         input.NewGate(cfg.Ship.FlightRooms()...),
	}
	s.decay = companion.NewDecayTimer(s.state, cfg.DecayTimeout)

	settings := game.DefaultSettings()
	if cfg.Settings != nil {
		settings = cfg.Settings.GetSettings()
	}

	s.initSystems(cfg, settings.FlightSpeed)
	if err := s.initRoomAvatars(cfg); err != nil {
		return nil, err
	}
	s.chatPanel = modules.NewChatPanelModule(s.entityManager, cfg.Animations, s.state, cfg.Conversation,
		systems.NewTextInputSystem(s.entityManager))
	s.initInput(settings.ShowDebugOverlay)

	log.Printf("[ShipScene] Ready in %s (%d rooms, %d companion rooms, flight rooms %v)",
		cfg.Ship.StartRoom, len(cfg.Ship.Rooms), len(s.roomAvatars), cfg.Ship.FlightRooms())
	return s, nil
}

func (s *ShipScene) initSystems(cfg ShipSceneConfig, flightSpeed int) {
	s.entityManager = ecs.NewEntityManager()
	s.animationSystem = systems.NewAnimationSystem(s.entityManager)
	s.renderSystem = systems.NewRenderSystem(s.entityManager)

	s.flight = systems.NewFlightControlSystem(s.entityManager, flightSpeed)
	if cfg.Settings != nil {
		s.flight.SetSpeedListener(cfg.Settings.SetFlightSpeed)
	}

	s.navigation = systems.NewRoomNavigationSystem(cfg.Ship, cfg.Images)
	s.navigation.AddRoomChangeListener(func(from, to string) {
		s.state.UpdateLocation(companion.Location(to))
	})
}

// initRoomAvatars 为每个配置了伴侣锚点的房间创建头像
// 头像的点击拦截器先于房间出口判定
func (s *ShipScene) initRoomAvatars(cfg ShipSceneConfig) error {
	for i := range cfg.Ship.Rooms {
		room := &cfg.Ship.Rooms[i]
		if room.Companion == nil {
			continue
		}
		m, err := modules.NewRoomAvatarModule(s.entityManager, cfg.Animations, s.state, room)
		if err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
		s.roomAvatars = append(s.roomAvatars, m)
		s.navigation.AddClickInterceptor(m.HandleClick)
		cfg.Conversation.OnSend(m.StandUpOnSend)
	}
	return nil
}

// initInput 按优先级注册输入消费者：聊天 -> 飞行 -> 导航 -> 调试层
func (s *ShipScene) initInput(showDebug bool) {
	s.router = input.NewRouter(func() input.Activation {
		return s.gate.Evaluate(s.navigation.CurrentRoom(), s.chatPanel.IsFocused())
	})

	avatars := []*modules.CompanionAvatar{s.chatPanel.Avatar()}
	for _, m := range s.roomAvatars {
		avatars = append(avatars, m.Avatar())
	}

	var onToggle func(bool)
	if s.settings != nil {
		onToggle = s.settings.SetShowDebugOverlay
	}
	s.debugOverlay = modules.NewDebugOverlayModule(modules.DebugSources{
		State:   s.state,
		Decay:   s.decay,
		Router:  s.router,
		Flight:  s.flight,
		Avatars: avatars,
	}, showDebug, onToggle)

	s.router.Register(s.chatPanel, input.Always)
	s.router.Register(s.flight, input.FlightEligible)
	s.router.Register(s.navigation, input.NavigationEligible)
	s.router.Register(s.debugOverlay, input.Always)
	s.router.Refresh()
}
