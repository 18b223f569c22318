package companion

import (
	"errors"
	"fmt"
	"log"
)

// ErrReentrantUpdate 在通知回调内部再次修改状态时触发（以 panic 形式抛出）
//
// 通知循环必须是确定的：回调只能读取快照，不能在同一调用栈里再写状态。
var ErrReentrantUpdate = errors.New("companion: state mutated from within a change notification")

// Source 情绪变化的来源
type Source string

const (
	SourceChat   Source = "chat"   // 聊天分析结果
	SourceDecay  Source = "decay"  // 超时衰减
	SourceManual Source = "manual" // 玩家直接操作（点击头像等）
	SourceEvent  Source = "event"  // 游戏事件（发送消息、进入房间）
)

// maxHistory 状态历史保留条数
const maxHistory = 100

// Snapshot 某一时刻的完整状态（通知时传递整体快照而不是差量）
type Snapshot struct {
	Emotion   Emotion
	Pose      Pose
	Location  Location
	ChangedAt float64 // 最近一次情绪真正变化的会话时间（秒）
}

// ChangeKind 变更类型
type ChangeKind int

const (
	ChangeEmotion ChangeKind = iota
	ChangePose
	ChangeLocation
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeEmotion:
		return "emotion"
	case ChangePose:
		return "pose"
	case ChangeLocation:
		return "location"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change 描述触发本次通知的变更
type Change struct {
	Kind     ChangeKind
	Source   Source
	Previous Snapshot
	Current  Snapshot
	At       float64
}

// Listener 状态变更回调
type Listener func(snap Snapshot, change Change)

type subscription struct {
	id int
	fn Listener
}

// State 伴侣状态的唯一权威实例（每个游戏会话一个）
//
// 只能通过 UpdateEmotion / UpdatePose / UpdateLocation 修改；
// 值未变化的调用是空操作，不会通知订阅者，也不会重置 ChangedAt。
// 非并发安全：只允许在主循环中调用。
type State struct {
	clock       *Clock
	snap        Snapshot
	subscribers []subscription
	nextSubID   int
	notifying   bool
	history     []Change
}

// NewState 创建初始状态：neutral + seated
func NewState(clock *Clock, location Location) *State {
	if clock == nil {
		clock = NewClock()
	}
	return &State{
		clock: clock,
		snap: Snapshot{
			Emotion:   EmotionNeutral,
			Pose:      PoseSeated,
			Location:  location,
			ChangedAt: clock.Now(),
		},
	}
}

// Snapshot 返回当前状态快照
func (s *State) Snapshot() Snapshot {
	return s.snap
}

// Now 返回状态使用的会话时间
func (s *State) Now() float64 {
	return s.clock.Now()
}

// Subscribe 注册回调，返回取消订阅函数
// 通知顺序即注册顺序
func (s *State) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount 返回当前订阅者数量
func (s *State) SubscriberCount() int {
	return len(s.subscribers)
}

// UpdateEmotion 修改情绪
//
// 返回 true 表示状态确实发生了变化并已通知订阅者。
// unknown 和与当前相同的情绪都是空操作。
func (s *State) UpdateEmotion(emotion Emotion, source Source) bool {
	s.guard("UpdateEmotion", string(emotion))

	if emotion == EmotionUnknown {
		log.Printf("[CompanionState] Ignoring unknown emotion (source: %s)", source)
		return false
	}
	if !emotion.Valid() {
		log.Printf("[CompanionState] Ignoring invalid emotion '%s' (source: %s)", emotion, source)
		return false
	}
	if emotion == s.snap.Emotion {
		return false
	}

	prev := s.snap
	s.snap.Emotion = emotion
	s.snap.ChangedAt = s.clock.Now()
	log.Printf("[CompanionState] Emotion updated to '%s' (source: %s)", emotion, source)

	s.commit(Change{Kind: ChangeEmotion, Source: source, Previous: prev, At: s.snap.ChangedAt})
	return true
}

// UpdatePose 修改姿势
// 姿势变化不会影响情绪衰减计时（ChangedAt 保持不变）
func (s *State) UpdatePose(pose Pose) bool {
	s.guard("UpdatePose", string(pose))

	if !pose.Valid() {
		log.Printf("[CompanionState] Ignoring invalid pose '%s'", pose)
		return false
	}
	if pose == s.snap.Pose {
		return false
	}

	prev := s.snap
	s.snap.Pose = pose
	log.Printf("[CompanionState] Pose updated to '%s'", pose)

	s.commit(Change{Kind: ChangePose, Source: SourceManual, Previous: prev, At: s.clock.Now()})
	return true
}

// UpdateLocation 记录玩家当前所在的房间
// 房间内嵌头像依赖它决定是否显示，因此同样会通知订阅者
func (s *State) UpdateLocation(location Location) bool {
	s.guard("UpdateLocation", string(location))

	if location == "" || location == s.snap.Location {
		return false
	}

	prev := s.snap
	s.snap.Location = location
	log.Printf("[CompanionState] Location context updated to '%s'", location)

	s.commit(Change{Kind: ChangeLocation, Source: SourceEvent, Previous: prev, At: s.clock.Now()})
	return true
}

// History 返回最近的变更记录（旧 -> 新）
func (s *State) History() []Change {
	out := make([]Change, len(s.history))
	copy(out, s.history)
	return out
}

func (s *State) guard(op, value string) {
	if s.notifying {
		panic(fmt.Errorf("%w: %s(%s)", ErrReentrantUpdate, op, value))
	}
}

func (s *State) commit(change Change) {
	change.Current = s.snap
	s.history = append(s.history, change)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}

	// 遍历副本：回调里取消订阅不会打乱本轮通知
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)

	s.notifying = true
	defer func() { s.notifying = false }()

	snap := s.snap
	for _, sub := range subs {
		sub.fn(snap, change)
	}
}
