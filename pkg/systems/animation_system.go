package systems

import (
	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/ecs"
)

// AnimationSystem 推进所有帧动画实体的播放游标
type AnimationSystem struct {
	entityManager *ecs.EntityManager
}

// NewAnimationSystem 创建一个新的动画系统
func NewAnimationSystem(em *ecs.EntityManager) *AnimationSystem {
	return &AnimationSystem{
		entityManager: em,
	}
}

// Update 按各自的播放模式推进动画，并把当前帧写回 SpriteComponent
//
// once 停在最后一帧，loop 回到第 0 帧，ping_pong 往返，
// hold_last_frame 冻结在保持帧（面板仍可随时换入新游标）。
func (s *AnimationSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith2[*components.AnimationComponent, *components.SpriteComponent](s.entityManager)

	for _, id := range entities {
		anim, _ := ecs.GetComponent[*components.AnimationComponent](s.entityManager, id)
		sprite, _ := ecs.GetComponent[*components.SpriteComponent](s.entityManager, id)
		if anim == nil || sprite == nil || anim.Clip == nil {
			continue
		}

		anim.Advance(deltaTime)

		// 新换入的游标也要在同一帧显示出来
		if img := anim.CurrentImage(); img != nil {
			sprite.Image = img
		}
	}
}
