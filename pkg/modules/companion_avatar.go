package modules

import (
	"log"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/ecs"
)

// AnimationSource 把伴侣状态解析为新的播放游标（*game.AnimationResolver 实现了它）
type AnimationSource interface {
	Resolve(loc companion.Location, emotion companion.Emotion, pose companion.Pose) *components.AnimationComponent
}

// AnchorFunc 根据状态决定头像的位置，visible 为 false 时隐藏
type AnchorFunc func(snap companion.Snapshot) (x, y float64, visible bool)

// CompanionAvatar 一个视觉上下文中的伴侣头像
//
// 创建时订阅伴侣状态；每次通知都按自己的位置重新解析动画。
// 解析出的动画键与当前相同时保留原游标（不从第 0 帧重播），
// 不同时换入新游标。
type CompanionAvatar struct {
	entityManager *ecs.EntityManager
	source        AnimationSource
	location      companion.Location
	anchor        AnchorFunc

	entity      ecs.EntityID
	unsubscribe func()
	swaps       int
}

// NewCompanionAvatar 创建头像实体并订阅状态
func NewCompanionAvatar(
	em *ecs.EntityManager,
	source AnimationSource,
	state *companion.State,
	location companion.Location,
	layer int,
	anchor AnchorFunc,
) *CompanionAvatar {
	a := &CompanionAvatar{
		entityManager: em,
		source:        source,
		location:      location,
		anchor:        anchor,
		entity:        em.CreateEntity(),
	}

	ecs.AddComponent(em, a.entity, &components.PositionComponent{})
	ecs.AddComponent(em, a.entity, &components.SpriteComponent{})
	ecs.AddComponent(em, a.entity, &components.LayerComponent{Z: layer})

	a.apply(state.Snapshot())
	a.unsubscribe = state.Subscribe(func(snap companion.Snapshot, _ companion.Change) {
		a.apply(snap)
	})
	return a
}

// apply 重新解析动画并更新位置与可见性
func (a *CompanionAvatar) apply(snap companion.Snapshot) {
	sprite, _ := ecs.GetComponent[*components.SpriteComponent](a.entityManager, a.entity)
	pos, _ := ecs.GetComponent[*components.PositionComponent](a.entityManager, a.entity)

	x, y, visible := a.anchor(snap)
	pos.X, pos.Y = x, y
	sprite.Hidden = !visible

	next := a.source.Resolve(a.location, snap.Emotion, snap.Pose)
	if next == nil {
		log.Printf("[CompanionAvatar] %s: nothing resolved for %s/%s, keeping current animation", a.location, snap.Emotion, snap.Pose)
		return
	}

	current := a.Playback()
	if current != nil && current.Key() == next.Key() {
		return
	}

	ecs.AddComponent(a.entityManager, a.entity, next)
	sprite.Image = next.CurrentImage()
	a.swaps++
	log.Printf("[CompanionAvatar] %s: %s -> %s (%s, %s)", a.location, current.Key(), next.Key(), snap.Emotion, snap.Pose)
}

// Entity 返回头像实体
func (a *CompanionAvatar) Entity() ecs.EntityID {
	return a.entity
}

// Location 返回头像所在的视觉上下文
func (a *CompanionAvatar) Location() companion.Location {
	return a.location
}

// Playback 返回当前播放游标
func (a *CompanionAvatar) Playback() *components.AnimationComponent {
	anim, _ := ecs.GetComponent[*components.AnimationComponent](a.entityManager, a.entity)
	return anim
}

// Key 返回当前动画键
func (a *CompanionAvatar) Key() string {
	return a.Playback().Key()
}

// Visible 报告头像是否显示
func (a *CompanionAvatar) Visible() bool {
	sprite, ok := ecs.GetComponent[*components.SpriteComponent](a.entityManager, a.entity)
	return ok && !sprite.Hidden
}

// Swaps 返回换入新游标的次数（含初始化）
func (a *CompanionAvatar) Swaps() int {
	return a.swaps
}

// Contains 报告屏幕坐标是否落在可见的头像上
func (a *CompanionAvatar) Contains(x, y float64) bool {
	sprite, ok := ecs.GetComponent[*components.SpriteComponent](a.entityManager, a.entity)
	if !ok || sprite.Hidden {
		return false
	}
	pos, _ := ecs.GetComponent[*components.PositionComponent](a.entityManager, a.entity)
	return components.Contains(pos, sprite.Image, x, y)
}

// Cleanup 取消订阅并销毁实体
func (a *CompanionAvatar) Cleanup() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.entityManager.DestroyEntity(a.entity)
}
