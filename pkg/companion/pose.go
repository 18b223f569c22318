package companion

// Pose 伴侣的身体姿势，与情绪相互独立
type Pose string

const (
	PoseSeated   Pose = "seated"
	PoseChair    Pose = "chair"
	PoseStanding Pose = "standing"
)

var allPoses = []Pose{PoseSeated, PoseChair, PoseStanding}

// AllPoses 返回全部姿势
func AllPoses() []Pose {
	out := make([]Pose, len(allPoses))
	copy(out, allPoses)
	return out
}

// Valid 报告 p 是否为已知姿势
func (p Pose) Valid() bool {
	for _, known := range allPoses {
		if p == known {
			return true
		}
	}
	return false
}

// Toggled 返回点击头像时切换到的姿势：坐着 <-> 站立
// 椅子姿势视为站起的过渡，点击后回到坐姿
func (p Pose) Toggled() Pose {
	if p == PoseSeated {
		return PoseStanding
	}
	return PoseSeated
}

func (p Pose) String() string {
	return string(p)
}

// Location 请求动画的视觉上下文：侧边栏或某个房间
type Location string

// LocationSidePanel 右侧聊天面板，与玩家所在房间无关
const LocationSidePanel Location = "side_panel"

func (l Location) String() string {
	return string(l)
}
