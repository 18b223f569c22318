package components

// FlightComponent 飞船的飞行状态
// 只记录操控意图和世界坐标，星空的绘制与物理不在这里
type FlightComponent struct {
	Speed int // 飞行速度档位 1..100

	// 世界坐标（环形拓扑，超出边界后回绕）
	WorldX, WorldY float64
	Heading        float64 // 航向（度），[0, 360)

	// 本帧的操控意图，-1..1
	MoveX, MoveY float64
	Rotate       float64

	Targeting bool // 是否锁定了目标
}

// MoveSpeed 星空移动速度（像素/秒）
func (f *FlightComponent) MoveSpeed() float64 {
	return float64(f.Speed) * 10
}
