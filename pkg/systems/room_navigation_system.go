package systems

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/input"
	"github.com/gonewx/slaglegion/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// hoverColor 出口悬停高亮（半透明红色）
var hoverColor = color.RGBA{R: 255, G: 0, B: 0, A: 90}

// ImageLoader 加载房间背景图
type ImageLoader interface {
	LoadImage(path string) (*ebiten.Image, error)
}

// ClickInterceptor 在出口判定之前处理点击，返回 true 表示已处理
// 例如控制室里点击伴侣头像切换姿势
type ClickInterceptor func(x, y float64) bool

// RoomChangeListener 房间切换回调
type RoomChangeListener func(from, to string)

// exitRegion 一个可点击的出口
type exitRegion struct {
	to      string
	rect    [4]float64
	polygon []utils.Point
}

func (r *exitRegion) contains(x, y float64) bool {
	if r.polygon != nil {
		return utils.PointInPolygon(x, y, r.polygon)
	}
	return utils.PointInRect(x, y, r.rect[0], r.rect[1], r.rect[2], r.rect[3])
}

// RoomNavigationSystem 飞船内的房间导航
//
// 作为输入路由的最后一个消费者：鼠标悬停高亮出口，左键点击出口切换房间。
// 每帧通过 CurrentRoom 向激活判定提供当前房间。
type RoomNavigationSystem struct {
	ship    *config.ShipConfig
	loader  ImageLoader
	current string
	exits   []exitRegion
	hovered int

	interceptors []ClickInterceptor
	listeners    []RoomChangeListener

	backgrounds map[string]*ebiten.Image
	missing     map[string]bool
	white       *ebiten.Image
}

// NewRoomNavigationSystem 创建导航系统，从 ship.StartRoom 开始
func NewRoomNavigationSystem(ship *config.ShipConfig, loader ImageLoader) *RoomNavigationSystem {
	s := &RoomNavigationSystem{
		ship:        ship,
		loader:      loader,
		hovered:     -1,
		backgrounds: make(map[string]*ebiten.Image),
		missing:     make(map[string]bool),
	}
	s.enter(ship.StartRoom)
	return s
}

// CurrentRoom 返回玩家所在房间的 ID
func (s *RoomNavigationSystem) CurrentRoom() string {
	return s.current
}

// CurrentRoomName 返回当前房间的显示名称
func (s *RoomNavigationSystem) CurrentRoomName() string {
	if room, ok := s.ship.Room(s.current); ok && room.Name != "" {
		return room.Name
	}
	return s.current
}

// HoveredExit 返回鼠标悬停的出口目标，没有时返回空字符串
func (s *RoomNavigationSystem) HoveredExit() string {
	if s.hovered < 0 || s.hovered >= len(s.exits) {
		return ""
	}
	return s.exits[s.hovered].to
}

// AddClickInterceptor 注册点击拦截器，按注册顺序调用
func (s *RoomNavigationSystem) AddClickInterceptor(fn ClickInterceptor) {
	s.interceptors = append(s.interceptors, fn)
}

// AddRoomChangeListener 注册房间切换回调
func (s *RoomNavigationSystem) AddRoomChangeListener(fn RoomChangeListener) {
	s.listeners = append(s.listeners, fn)
}

// GoTo 切换到指定房间，房间不存在时返回错误
func (s *RoomNavigationSystem) GoTo(roomID string) error {
	if _, ok := s.ship.Room(roomID); !ok {
		return fmt.Errorf("unknown room %q", roomID)
	}
	if roomID == s.current {
		return nil
	}

	from := s.current
	s.enter(roomID)
	log.Printf("[RoomNavigation] %s -> %s", from, roomID)
	for _, fn := range s.listeners {
		fn(from, roomID)
	}
	return nil
}

func (s *RoomNavigationSystem) enter(roomID string) {
	s.current = roomID
	s.hovered = -1
	s.exits = s.exits[:0]

	room, ok := s.ship.Room(roomID)
	if !ok {
		return
	}
	for _, t := range room.Transitions {
		region := exitRegion{to: t.To}
		if len(t.Polygon) > 0 {
			region.polygon = make([]utils.Point, len(t.Polygon))
			for i, p := range t.Polygon {
				region.polygon[i] = utils.Point{X: p[0], Y: p[1]}
			}
		} else if len(t.Rect) == 4 {
			copy(region.rect[:], t.Rect)
		}
		s.exits = append(s.exits, region)
	}
}

// ExitAt 返回 (x, y) 处的出口目标
func (s *RoomNavigationSystem) ExitAt(x, y float64) (string, bool) {
	if i := s.exitIndexAt(x, y); i >= 0 {
		return s.exits[i].to, true
	}
	return "", false
}

func (s *RoomNavigationSystem) exitIndexAt(x, y float64) int {
	for i := range s.exits {
		if s.exits[i].contains(x, y) {
			return i
		}
	}
	return -1
}

// Name 实现 input.Claimant
func (s *RoomNavigationSystem) Name() string {
	return "RoomNavigation"
}

// HandleEvent 处理悬停与点击
func (s *RoomNavigationSystem) HandleEvent(ev input.Event) bool {
	switch ev.Kind {
	case input.PointerMove:
		s.hovered = s.exitIndexAt(ev.X, ev.Y)
		return s.hovered >= 0

	case input.PointerDown:
		if ev.Button != ebiten.MouseButtonLeft {
			return false
		}
		for _, fn := range s.interceptors {
			if fn(ev.X, ev.Y) {
				return true
			}
		}
		to, ok := s.ExitAt(ev.X, ev.Y)
		if !ok {
			return false
		}
		if err := s.GoTo(to); err != nil {
			log.Printf("[RoomNavigation] %v", err)
			return false
		}
		return true
	}
	return false
}

// Suspend 实现 input.Suspender：失去资格时取消悬停高亮
func (s *RoomNavigationSystem) Suspend() {
	s.hovered = -1
}

// Draw 绘制房间背景、名称和悬停高亮
func (s *RoomNavigationSystem) Draw(screen *ebiten.Image) {
	if bg := s.background(); bg != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(config.RoomImageX, config.RoomImageY)
		screen.DrawImage(bg, op)
	} else {
		vector.DrawFilledRect(screen, config.RoomImageX, config.RoomImageY,
			float32(config.ChatPanelX-config.RoomImageX-20), 460, color.RGBA{R: 24, G: 28, B: 40, A: 255}, false)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(config.RoomImageX, config.RoomTitleY)
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, s.CurrentRoomName(), utils.DefaultFace(), op)

	if s.hovered >= 0 && s.hovered < len(s.exits) {
		s.drawHover(screen, &s.exits[s.hovered])
	}
}

func (s *RoomNavigationSystem) background() *ebiten.Image {
	if img, ok := s.backgrounds[s.current]; ok {
		return img
	}
	if s.missing[s.current] || s.loader == nil {
		return nil
	}
	room, ok := s.ship.Room(s.current)
	if !ok || room.Background == "" {
		s.missing[s.current] = true
		return nil
	}
	img, err := s.loader.LoadImage(room.Background)
	if err != nil {
		log.Printf("[RoomNavigation] Background for %s unavailable: %v", s.current, err)
		s.missing[s.current] = true
		return nil
	}
	s.backgrounds[s.current] = img
	return img
}

func (s *RoomNavigationSystem) drawHover(screen *ebiten.Image, r *exitRegion) {
	if r.polygon == nil {
		vector.DrawFilledRect(screen, float32(r.rect[0]), float32(r.rect[1]), float32(r.rect[2]), float32(r.rect[3]), hoverColor, false)
		return
	}

	var path vector.Path
	path.MoveTo(float32(r.polygon[0].X), float32(r.polygon[0].Y))
	for _, p := range r.polygon[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	cr, cg, cb, ca := hoverColor.RGBA()
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(cr) / 0xffff
		vs[i].ColorG = float32(cg) / 0xffff
		vs[i].ColorB = float32(cb) / 0xffff
		vs[i].ColorA = float32(ca) / 0xffff
	}
	screen.DrawTriangles(vs, is, s.whitePixel(), &ebiten.DrawTrianglesOptions{})
}

// whitePixel 返回 1x1 白色源图，用于填充多边形
func (s *RoomNavigationSystem) whitePixel() *ebiten.Image {
	if s.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		s.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return s.white
}
