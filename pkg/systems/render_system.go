package systems

import (
	"sort"

	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderSystem 绘制所有拥有位置和精灵组件的实体
//
// 绘制顺序按 LayerComponent.Z 从小到大，Z 相同时按实体创建顺序。
// 没有 LayerComponent 的实体视为 Z=0。位置是图片左上角的屏幕坐标。
type RenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewRenderSystem 创建一个新的渲染系统
func NewRenderSystem(em *ecs.EntityManager) *RenderSystem {
	return &RenderSystem{
		entityManager: em,
	}
}

// Draw 绘制所有可见实体
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	for _, id := range s.DrawOrder() {
		s.drawEntity(screen, id)
	}
}

// DrawEntity 绘制单个实体（忽略层级）
func (s *RenderSystem) DrawEntity(screen *ebiten.Image, id ecs.EntityID) {
	s.drawEntity(screen, id)
}

// DrawOrder 返回本帧要绘制的实体，已按层级排序，隐藏或没有图像的实体被排除
func (s *RenderSystem) DrawOrder() []ecs.EntityID {
	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.SpriteComponent](s.entityManager)

	visible := entities[:0:0]
	for _, id := range entities {
		sprite, _ := ecs.GetComponent[*components.SpriteComponent](s.entityManager, id)
		if sprite == nil || sprite.Hidden || sprite.Image == nil {
			continue
		}
		visible = append(visible, id)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		zi, zj := s.layerOf(visible[i]), s.layerOf(visible[j])
		if zi != zj {
			return zi < zj
		}
		return visible[i] < visible[j]
	})
	return visible
}

func (s *RenderSystem) layerOf(id ecs.EntityID) int {
	layer, ok := ecs.GetComponent[*components.LayerComponent](s.entityManager, id)
	if !ok || layer == nil {
		return 0
	}
	return layer.Z
}

func (s *RenderSystem) drawEntity(screen *ebiten.Image, id ecs.EntityID) {
	sprite, ok := ecs.GetComponent[*components.SpriteComponent](s.entityManager, id)
	if !ok || sprite.Image == nil || sprite.Hidden {
		return
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
	if !ok {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(pos.X, pos.Y)
	screen.DrawImage(sprite.Image, op)
}
