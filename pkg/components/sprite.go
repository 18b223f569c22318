package components

import "github.com/hajimehoshi/ebiten/v2"

// SpriteComponent 存储实体的视觉表现(当前绘制的图像)
type SpriteComponent struct {
	Image *ebiten.Image
	// Hidden 为 true 时不绘制（例如玩家不在该房间）
	Hidden bool
}

// PositionComponent 屏幕坐标（左上角）
type PositionComponent struct {
	X, Y float64
}

// LayerComponent 绘制层级，数值小的先绘制
type LayerComponent struct {
	Z int
}

// Contains 报告点 (px, py) 是否落在以 pos 为左上角、尺寸为 img 的矩形内
func Contains(pos *PositionComponent, img *ebiten.Image, px, py float64) bool {
	if pos == nil || img == nil {
		return false
	}
	b := img.Bounds()
	return px >= pos.X && px < pos.X+float64(b.Dx()) &&
		py >= pos.Y && py < pos.Y+float64(b.Dy())
}
