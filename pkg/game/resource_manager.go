package game

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	_ "image/png" // Register PNG decoder
	"log"
	"path"

	"github.com/gonewx/slaglegion/pkg/embedded"
	"github.com/gonewx/slaglegion/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// FrameSource 帧图片来源
//
// 帧是预先栅格化的 PNG，按文件名排序即播放顺序。
// 实现需要自行缓存：同一目录多次加载应返回同一组图片。
type FrameSource interface {
	LoadFrames(dir, pattern string, scale float64) ([]*ebiten.Image, error)
}

// ResourceManager is responsible for centralized management of image resources.
// All files are read through the embedded package, so the same code path
// serves the on-disk assets/ tree and the data/ tree compiled into the binary.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. It is only used from the game loop.
type ResourceManager struct {
	imageCache map[string]*ebiten.Image   // path -> Image
	frameCache map[string][]*ebiten.Image // dir|pattern|scale -> frames
}

// NewResourceManager creates a ResourceManager with empty caches.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{
		imageCache: make(map[string]*ebiten.Image),
		frameCache: make(map[string][]*ebiten.Image),
	}
}

// LoadImage loads an image from the specified path and caches it.
// If the image has already been loaded, it returns the cached version.
func (rm *ResourceManager) LoadImage(p string) (*ebiten.Image, error) {
	if cachedImage, exists := rm.imageCache[p]; exists {
		return cachedImage, nil
	}

	file, err := embedded.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", p, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", p, err)
	}

	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[p] = ebitenImg
	return ebitenImg, nil
}

// GetImage returns a previously loaded image, or nil.
func (rm *ResourceManager) GetImage(p string) *ebiten.Image {
	return rm.imageCache[p]
}

// LoadFrames 加载目录下匹配 pattern 的全部帧，按文件名排序
func (rm *ResourceManager) LoadFrames(dir, pattern string, scale float64) ([]*ebiten.Image, error) {
	cacheKey := fmt.Sprintf("%s|%s|%.3f", dir, pattern, scale)
	if frames, ok := rm.frameCache[cacheKey]; ok {
		return frames, nil
	}

	files, err := embedded.Glob(path.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list frames in %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frames matching %s in %s", pattern, dir)
	}

	frames := make([]*ebiten.Image, 0, len(files))
	for _, f := range files {
		img, err := rm.LoadImage(f)
		if err != nil {
			return nil, err
		}
		frames = append(frames, utils.ScaleImage(img, scale))
	}

	rm.frameCache[cacheKey] = frames
	log.Printf("[ResourceManager] Loaded %d frames from %s", len(frames), dir)
	return frames, nil
}

// PlaceholderFrameSource 在没有美术资源时生成占位帧
//
// 每个目录生成一组纯色帧，颜色由目录名决定，帧上标注动画目录和帧号，
// 便于在缺少素材的开发环境中检查动画切换。
type PlaceholderFrameSource struct {
	FrameCount int
	Width      int
	Height     int

	cache map[string][]*ebiten.Image
}

// NewPlaceholderFrameSource 创建占位帧来源
func NewPlaceholderFrameSource() *PlaceholderFrameSource {
	return &PlaceholderFrameSource{
		FrameCount: 6,
		Width:      200,
		Height:     260,
		cache:      make(map[string][]*ebiten.Image),
	}
}

// LoadFrames 实现 FrameSource
func (p *PlaceholderFrameSource) LoadFrames(dir, pattern string, scale float64) ([]*ebiten.Image, error) {
	if frames, ok := p.cache[dir]; ok {
		return frames, nil
	}

	h := fnv.New32a()
	h.Write([]byte(dir))
	sum := h.Sum32()
	base := color.RGBA{R: uint8(sum>>16) | 0x40, G: uint8(sum>>8) | 0x40, B: uint8(sum) | 0x40, A: 0xff}

	w, ht := p.Width, p.Height
	if scale > 0 && scale != 1 {
		w = int(float64(w) * scale)
		ht = int(float64(ht) * scale)
	}

	face := utils.DefaultFace()
	label := path.Base(dir)
	frames := make([]*ebiten.Image, p.FrameCount)
	for i := range frames {
		img := ebiten.NewImage(w, ht)
		shade := uint8(i * 12)
		img.Fill(color.RGBA{R: base.R - shade/2, G: base.G - shade/2, B: base.B, A: 0xff})

		op := &text.DrawOptions{}
		op.GeoM.Translate(6, 6)
		text.Draw(img, fmt.Sprintf("%s #%d", label, i), face, op)
		frames[i] = img
	}

	p.cache[dir] = frames
	return frames, nil
}
