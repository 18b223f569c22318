package input

// Activation 本帧各输入消费者的激活状态
// 每帧由 Gate 重新计算，不保存跨帧状态
type Activation struct {
	Room               string
	ChatFocused        bool
	Modal              bool // 聊天输入框获得焦点时为 true，其他消费者全部失效
	FlightEligible     bool
	NavigationEligible bool
}

// Gate 根据当前房间和聊天焦点计算 Activation（纯函数）
type Gate struct {
	flightRooms map[string]bool
}

// NewGate 创建激活判定器，flightRooms 为允许飞行操控的房间（通常只有 control_room）
func NewGate(flightRooms ...string) *Gate {
	g := &Gate{flightRooms: make(map[string]bool, len(flightRooms))}
	for _, r := range flightRooms {
		g.flightRooms[r] = true
	}
	return g
}

// Evaluate 计算激活状态
func (g *Gate) Evaluate(room string, chatFocused bool) Activation {
	modal := chatFocused
	return Activation{
		Room:               room,
		ChatFocused:        chatFocused,
		Modal:              modal,
		FlightEligible:     g.flightRooms[room] && !modal,
		NavigationEligible: !modal,
	}
}

// IsFlightRoom 报告 room 是否为飞行房间
func (g *Gate) IsFlightRoom(room string) bool {
	return g.flightRooms[room]
}
