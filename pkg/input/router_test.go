package input

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// recordingClaimant 记录收到的事件，claim 决定是否认领
type recordingClaimant struct {
	name      string
	claim     func(ev Event) bool
	got       []Event
	suspended int
}

func (c *recordingClaimant) Name() string { return c.name }

func (c *recordingClaimant) HandleEvent(ev Event) bool {
	c.got = append(c.got, ev)
	if c.claim == nil {
		return false
	}
	return c.claim(ev)
}

func (c *recordingClaimant) Suspend() { c.suspended++ }

type fakeWorld struct {
	room        string
	chatFocused bool
}

func newTestRouter(w *fakeWorld) (*Router, *recordingClaimant, *recordingClaimant, *recordingClaimant) {
	gate := NewGate("control_room")
	router := NewRouter(func() Activation { return gate.Evaluate(w.room, w.chatFocused) })

	chat := &recordingClaimant{name: "chat", claim: func(Event) bool { return w.chatFocused }}
	flight := &recordingClaimant{name: "flight", claim: func(ev Event) bool {
		return ev.Kind == KeyDown || ev.Kind == KeyUp
	}}
	nav := &recordingClaimant{name: "nav", claim: func(ev Event) bool { return ev.Kind == PointerDown }}

	router.Register(chat, Always)
	router.Register(flight, FlightEligible)
	router.Register(nav, NavigationEligible)
	return router, chat, flight, nav
}

func TestRouterPriority(t *testing.T) {
	w := &fakeWorld{room: "control_room"}
	router, chat, flight, nav := newTestRouter(w)

	if !router.Route(Event{Kind: KeyDown, Key: ebiten.KeyW}) {
		t.Fatal("W 应被飞行控制认领")
	}
	if len(chat.got) != 1 || len(flight.got) != 1 || len(nav.got) != 0 {
		t.Errorf("分发次数错误: chat=%d flight=%d nav=%d", len(chat.got), len(flight.got), len(nav.got))
	}

	if !router.Route(Event{Kind: PointerDown, X: 10, Y: 10}) {
		t.Fatal("点击应被房间导航认领")
	}
	if len(nav.got) != 1 {
		t.Errorf("导航应收到 1 个事件, got %d", len(nav.got))
	}

	if router.Route(Event{Kind: Wheel, DeltaY: 1}) {
		t.Error("无人认领的事件应返回 false")
	}
}

func TestRouterChatFocusClaimsEverything(t *testing.T) {
	w := &fakeWorld{room: "control_room", chatFocused: true}
	router, _, flight, nav := newTestRouter(w)

	events := []Event{
		{Kind: KeyDown, Key: ebiten.KeyW},
		{Kind: TextInput, Text: "w"},
		{Kind: PointerDown, X: 5, Y: 5},
		{Kind: KeyUp, Key: ebiten.KeyW},
	}
	if n := router.RouteAll(events); n != len(events) {
		t.Errorf("聊天框获得焦点时应认领全部事件, got %d", n)
	}
	if len(flight.got) != 0 || len(nav.got) != 0 {
		t.Errorf("飞行控制和导航不应收到任何事件: flight=%d nav=%d", len(flight.got), len(nav.got))
	}
}

func TestRouterFlightOnlyInFlightRoom(t *testing.T) {
	w := &fakeWorld{room: "crew_quarters"}
	router, _, flight, nav := newTestRouter(w)

	if router.Route(Event{Kind: KeyDown, Key: ebiten.KeyW}) {
		t.Error("非飞行房间不应有消费者认领 W")
	}
	if len(flight.got) != 0 {
		t.Error("非飞行房间飞行控制不应收到事件")
	}
	// W 越过飞行控制继续向下传递给导航
	if len(nav.got) != 1 {
		t.Fatalf("导航应收到 1 个事件, got %d", len(nav.got))
	}
	if nav.got[0].Kind != KeyDown || nav.got[0].Key != ebiten.KeyW {
		t.Errorf("导航收到的事件应为 W 按下, got %+v", nav.got[0])
	}
}

func TestRouterSuspendsOnLostEligibility(t *testing.T) {
	w := &fakeWorld{room: "control_room"}
	router, chat, flight, _ := newTestRouter(w)

	router.Route(Event{Kind: KeyDown, Key: ebiten.KeyW})
	if flight.suspended != 0 {
		t.Fatal("仍然有资格时不应挂起")
	}

	// 离开控制室
	w.room = "engineering"
	router.Refresh()
	if flight.suspended != 1 {
		t.Errorf("离开飞行房间后应挂起一次, got %d", flight.suspended)
	}

	// 再次刷新不重复挂起
	router.Refresh()
	if flight.suspended != 1 {
		t.Errorf("重复刷新不应再次挂起, got %d", flight.suspended)
	}

	// 回到控制室后再被聊天焦点挂起
	w.room = "control_room"
	router.Refresh()
	w.chatFocused = true
	router.Refresh()
	if flight.suspended != 2 {
		t.Errorf("聊天获得焦点应挂起飞行控制, got %d", flight.suspended)
	}
	if chat.suspended != 0 {
		t.Error("聊天界面始终有资格，不应被挂起")
	}
}

func TestRouterActivationChangesMidFrame(t *testing.T) {
	w := &fakeWorld{room: "control_room"}
	router, chat, flight, _ := newTestRouter(w)

	// 第一个事件让聊天框获得焦点，同一帧后续事件立即改由聊天认领
	chat.claim = func(ev Event) bool {
		if ev.Kind == PointerDown {
			w.chatFocused = true
			return true
		}
		return w.chatFocused
	}

	router.RouteAll([]Event{
		{Kind: PointerDown, X: 900, Y: 600},
		{Kind: KeyDown, Key: ebiten.KeyA},
	})
	if len(flight.got) != 0 {
		t.Errorf("焦点切换后飞行控制不应收到按键, got %d", len(flight.got))
	}
	if flight.suspended != 1 {
		t.Errorf("焦点切换应挂起飞行控制, got %d", flight.suspended)
	}
}
