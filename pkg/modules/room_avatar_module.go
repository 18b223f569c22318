package modules

import (
	"fmt"
	"log"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/ecs"
)

// roomAvatarLayer 房间头像绘制在房间背景之上、聊天面板之下
const roomAvatarLayer = 10

// RoomAvatarModule 嵌入房间场景中的伴侣
//
// 只在玩家位于该房间时显示；坐姿和站姿位置不同（rooms.yaml 的 companion.poses）。
// 点击头像在坐姿与站姿之间切换；玩家在该房间发消息时，坐着的伴侣会站起来。
type RoomAvatarModule struct {
	state  *companion.State
	room   companion.Location
	avatar *CompanionAvatar
}

// NewRoomAvatarModule 为配置了 companion 锚点的房间创建头像
func NewRoomAvatarModule(
	em *ecs.EntityManager,
	source AnimationSource,
	state *companion.State,
	room *config.RoomConfig,
) (*RoomAvatarModule, error) {
	if room == nil || room.Companion == nil || len(room.Companion.Poses) == 0 {
		return nil, fmt.Errorf("room has no companion anchor")
	}

	poses := room.Companion.Poses
	loc := companion.Location(room.ID)
	anchor := func(snap companion.Snapshot) (float64, float64, bool) {
		p, ok := poses[string(snap.Pose)]
		if !ok {
			p = poses[string(companion.PoseSeated)]
		}
		return p[0], p[1], snap.Location == loc
	}

	m := &RoomAvatarModule{
		state: state,
		room:  loc,
	}
	m.avatar = NewCompanionAvatar(em, source, state, loc, roomAvatarLayer, anchor)
	log.Printf("[RoomAvatar] Companion placed in %s (%d pose anchors)", room.ID, len(poses))
	return m, nil
}

// Avatar 返回头像
func (m *RoomAvatarModule) Avatar() *CompanionAvatar {
	return m.avatar
}

// HandleClick 点击头像切换姿势，返回 true 表示点击被处理
// 注册为 RoomNavigationSystem 的点击拦截器，优先于房间出口
func (m *RoomAvatarModule) HandleClick(x, y float64) bool {
	if m.state.Snapshot().Location != m.room || !m.avatar.Contains(x, y) {
		return false
	}
	next := m.state.Snapshot().Pose.Toggled()
	m.state.UpdatePose(next)
	return true
}

// StandUpOnSend 玩家在该房间发消息时让坐着的伴侣站起来
func (m *RoomAvatarModule) StandUpOnSend(string) {
	snap := m.state.Snapshot()
	if snap.Location != m.room || snap.Pose != companion.PoseSeated {
		return
	}
	m.state.UpdatePose(companion.PoseStanding)
}

// Cleanup 取消订阅并销毁实体
func (m *RoomAvatarModule) Cleanup() {
	m.avatar.Cleanup()
}
