package input

import "testing"

func TestGateEvaluate(t *testing.T) {
	gate := NewGate("control_room")

	tests := []struct {
		name        string
		room        string
		chatFocused bool
		flight      bool
		navigation  bool
	}{
		{"控制室无焦点", "control_room", false, true, true},
		{"控制室聊天焦点", "control_room", true, false, false},
		{"其他房间无焦点", "engineering", false, false, true},
		{"其他房间聊天焦点", "engineering", true, false, false},
		{"空房间", "", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := gate.Evaluate(tt.room, tt.chatFocused)
			if a.FlightEligible != tt.flight {
				t.Errorf("FlightEligible = %v, want %v", a.FlightEligible, tt.flight)
			}
			if a.NavigationEligible != tt.navigation {
				t.Errorf("NavigationEligible = %v, want %v", a.NavigationEligible, tt.navigation)
			}
			if a.Modal != tt.chatFocused {
				t.Errorf("Modal = %v, want %v", a.Modal, tt.chatFocused)
			}
		})
	}
}

func TestGateIsPure(t *testing.T) {
	gate := NewGate("control_room")
	first := gate.Evaluate("control_room", false)
	gate.Evaluate("engineering", true)
	if again := gate.Evaluate("control_room", false); again != first {
		t.Errorf("相同输入应得到相同结果: %+v vs %+v", first, again)
	}
	if !gate.IsFlightRoom("control_room") || gate.IsFlightRoom("engineering") {
		t.Error("IsFlightRoom 判定错误")
	}
}
