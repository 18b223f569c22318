package systems

import (
	"testing"

	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/hajimehoshi/ebiten/v2"
)

func keyUp(k ebiten.Key) input.Event {
	return input.Event{Kind: input.KeyUp, Key: k}
}

func TestFlightKeysClaimed(t *testing.T) {
	s := NewFlightControlSystem(ecs.NewEntityManager(), 1)

	tests := []struct {
		name  string
		ev    input.Event
		claim bool
	}{
		{"W 按下", keyDown(ebiten.KeyW), true},
		{"Q 按下", keyDown(ebiten.KeyQ), true},
		{"W 松开", keyUp(ebiten.KeyW), true},
		{"T 锁定目标", keyDown(ebiten.KeyT), true},
		{"加速", keyDown(ebiten.KeyEqual), true},
		{"减速", keyDown(ebiten.KeyNumpadSubtract), true},
		{"普通字母不认领", keyDown(ebiten.KeyH), false},
		{"文本事件不认领", input.Event{Kind: input.TextInput, Text: "w"}, false},
		{"鼠标点击不认领", input.Event{Kind: input.PointerDown, X: 500, Y: 300}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HandleEvent(tt.ev); got != tt.claim {
				t.Errorf("HandleEvent(%v) = %v, want %v", tt.ev, got, tt.claim)
			}
		})
	}
}

func TestFlightMovementIntent(t *testing.T) {
	s := NewFlightControlSystem(ecs.NewEntityManager(), 10)
	f := s.Flight()
	f.WorldX, f.WorldY = 1000, 1000

	s.HandleEvent(keyDown(ebiten.KeyW))
	s.HandleEvent(keyDown(ebiten.KeyA))
	s.Update(0.5)

	if f.MoveX != 1 || f.MoveY != 1 {
		t.Fatalf("Expected intent (1,1), got (%v,%v)", f.MoveX, f.MoveY)
	}
	// speed 10 -> 100 px/s，半秒 50 像素，飞船与星星反向
	if f.WorldX != 950 || f.WorldY != 950 {
		t.Errorf("Expected world position (950,950), got (%v,%v)", f.WorldX, f.WorldY)
	}

	s.HandleEvent(keyUp(ebiten.KeyW))
	s.HandleEvent(keyUp(ebiten.KeyA))
	s.Update(0.5)
	if f.MoveX != 0 || f.MoveY != 0 {
		t.Error("Intent should clear after keys are released")
	}
	if f.WorldX != 950 {
		t.Error("World position should not change without intent")
	}
}

func TestFlightWorldWraps(t *testing.T) {
	s := NewFlightControlSystem(ecs.NewEntityManager(), 100)
	f := s.Flight()

	s.HandleEvent(keyDown(ebiten.KeyA))
	s.Update(1)
	if f.WorldX != FlightWorldWidth-1000 {
		t.Errorf("Expected wrap to %d, got %v", FlightWorldWidth-1000, f.WorldX)
	}

	s.HandleEvent(keyDown(ebiten.KeyE))
	s.Update(1)
	if f.Heading != 270 {
		t.Errorf("Expected heading 270 after rotating counter-clockwise, got %v", f.Heading)
	}
}

func TestFlightSpeedClamped(t *testing.T) {
	s := NewFlightControlSystem(ecs.NewEntityManager(), 1)
	var saved []int
	s.SetSpeedListener(func(speed int) { saved = append(saved, speed) })

	s.HandleEvent(keyDown(ebiten.KeyMinus))
	if s.Flight().Speed != 1 {
		t.Errorf("Speed should not go below 1, got %d", s.Flight().Speed)
	}
	if len(saved) != 0 {
		t.Error("Unchanged speed should not notify")
	}

	for i := 0; i < 150; i++ {
		s.HandleEvent(keyDown(ebiten.KeyNumpadAdd))
	}
	if s.Flight().Speed != 100 {
		t.Errorf("Speed should cap at 100, got %d", s.Flight().Speed)
	}
	if len(saved) != 99 || saved[len(saved)-1] != 100 {
		t.Errorf("Expected 99 notifications ending at 100, got %d", len(saved))
	}
}

func TestFlightSuspendReleasesKeys(t *testing.T) {
	s := NewFlightControlSystem(ecs.NewEntityManager(), 5)
	s.HandleEvent(keyDown(ebiten.KeyD))
	s.HandleEvent(keyDown(ebiten.KeyQ))
	s.Update(0.1)

	s.Suspend()
	if s.HeldKeys() != 0 {
		t.Errorf("Expected no held keys after suspend, got %d", s.HeldKeys())
	}
	f := s.Flight()
	if f.MoveX != 0 || f.Rotate != 0 {
		t.Error("Suspend should clear the intent immediately")
	}

	before := f.WorldX
	s.Update(1)
	if f.WorldX != before {
		t.Error("Ship should not drift after suspend")
	}
}

func TestFlightSuspendedThroughRouter(t *testing.T) {
	s := NewFlightControlSystem(ecs.NewEntityManager(), 5)
	gate := input.NewGate("control_room")
	room, focused := "control_room", false
	router := input.NewRouter(func() input.Activation { return gate.Evaluate(room, focused) })
	router.Register(s, input.FlightEligible)

	if !router.Route(keyDown(ebiten.KeyW)) {
		t.Fatal("W should be claimed in the control room")
	}
	room = "hall_1"
	router.Refresh()
	if s.HeldKeys() != 0 {
		t.Error("Leaving the flight room should release held keys")
	}
	if router.Route(keyDown(ebiten.KeyW)) {
		t.Error("Flight keys should be dropped outside the flight room")
	}
}
