package systems

import (
	"log"
	"math"

	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/gonewx/slaglegion/pkg/game"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// FlightWorldWidth / FlightWorldHeight 世界尺寸为 500 个屏幕
	FlightWorldWidth  = 1300 * 500
	FlightWorldHeight = 700 * 500

	// flightRotationSpeed 旋转速度（度/秒）
	flightRotationSpeed = 90.0
)

// flightKeys 按住生效的飞行键
var flightKeys = map[ebiten.Key]bool{
	ebiten.KeyW: true,
	ebiten.KeyA: true,
	ebiten.KeyS: true,
	ebiten.KeyD: true,
	ebiten.KeyQ: true,
	ebiten.KeyE: true,
}

// FlightControlSystem 控制室里的飞行操控
//
// 作为输入消费者注册在聊天界面之后、房间导航之前。
// 失去激活资格（离开控制室或聊天框获得焦点）时松开所有按住的键，
// 避免回来时飞船还在按旧方向漂移。
type FlightControlSystem struct {
	entityManager *ecs.EntityManager
	shipID        ecs.EntityID
	held          map[ebiten.Key]bool

	onSpeedChange func(speed int)
}

// NewFlightControlSystem 创建飞行系统及其飞船实体
func NewFlightControlSystem(em *ecs.EntityManager, speed int) *FlightControlSystem {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.FlightComponent{Speed: game.ClampFlightSpeed(speed)})

	return &FlightControlSystem{
		entityManager: em,
		shipID:        id,
		held:          make(map[ebiten.Key]bool),
	}
}

// SetSpeedListener 速度档位变化时回调（用于保存设置）
func (s *FlightControlSystem) SetSpeedListener(fn func(speed int)) {
	s.onSpeedChange = fn
}

// Flight 返回飞船的飞行组件
func (s *FlightControlSystem) Flight() *components.FlightComponent {
	f, _ := ecs.GetComponent[*components.FlightComponent](s.entityManager, s.shipID)
	return f
}

// HeldKeys 返回当前按住的飞行键数量
func (s *FlightControlSystem) HeldKeys() int {
	return len(s.held)
}

// Name 实现 input.Claimant
func (s *FlightControlSystem) Name() string {
	return "FlightControls"
}

// HandleEvent 认领飞行相关的按键
func (s *FlightControlSystem) HandleEvent(ev input.Event) bool {
	switch ev.Kind {
	case input.KeyDown:
		if ev.Repeat {
			return false
		}
		if flightKeys[ev.Key] {
			s.held[ev.Key] = true
			return true
		}
		switch ev.Key {
		case ebiten.KeyT:
			f := s.Flight()
			f.Targeting = !f.Targeting
			log.Printf("[FlightControl] Targeting: %v", f.Targeting)
			return true
		case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
			s.changeSpeed(1)
			return true
		case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
			s.changeSpeed(-1)
			return true
		}

	case input.KeyUp:
		if flightKeys[ev.Key] {
			delete(s.held, ev.Key)
			return true
		}
	}
	return false
}

// Suspend 实现 input.Suspender：松开所有键并清除意图
func (s *FlightControlSystem) Suspend() {
	if len(s.held) > 0 {
		log.Printf("[FlightControl] Releasing %d held keys", len(s.held))
	}
	clear(s.held)
	if f := s.Flight(); f != nil {
		f.MoveX, f.MoveY, f.Rotate = 0, 0, 0
	}
}

func (s *FlightControlSystem) changeSpeed(delta int) {
	f := s.Flight()
	next := game.ClampFlightSpeed(f.Speed + delta)
	if next == f.Speed {
		return
	}
	f.Speed = next
	log.Printf("[FlightControl] Flight speed: %d (%.0f px/s)", f.Speed, f.MoveSpeed())
	if s.onSpeedChange != nil {
		s.onSpeedChange(f.Speed)
	}
}

// Update 根据按住的键计算意图并推进世界坐标
//
// 星星朝按键方向移动，飞船的世界坐标朝相反方向移动：
// W 让星星向下（飞船向上），A 让星星向右（飞船向左）。
func (s *FlightControlSystem) Update(deltaTime float64) {
	f := s.Flight()
	if f == nil {
		return
	}

	f.MoveX, f.MoveY, f.Rotate = 0, 0, 0
	if s.held[ebiten.KeyW] {
		f.MoveY = 1
	}
	if s.held[ebiten.KeyS] {
		f.MoveY = -1
	}
	if s.held[ebiten.KeyA] {
		f.MoveX = 1
	}
	if s.held[ebiten.KeyD] {
		f.MoveX = -1
	}
	if s.held[ebiten.KeyQ] {
		f.Rotate = 1
	}
	if s.held[ebiten.KeyE] {
		f.Rotate = -1
	}

	if f.MoveX != 0 || f.MoveY != 0 {
		f.WorldX = wrap(f.WorldX-f.MoveX*f.MoveSpeed()*deltaTime, FlightWorldWidth)
		f.WorldY = wrap(f.WorldY-f.MoveY*f.MoveSpeed()*deltaTime, FlightWorldHeight)
	}
	if f.Rotate != 0 {
		f.Heading = wrap(f.Heading+f.Rotate*flightRotationSpeed*deltaTime, 360)
	}
}

func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}
