package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// ScaleImage returns a copy of img scaled by factor.
// A factor of 1 (or <= 0) returns img unchanged.
//
// Scaling happens once at load time so per-frame drawing needs no GeoM scale,
// and the scaled bounds can be used directly for click hit-testing.
func ScaleImage(img *ebiten.Image, factor float64) *ebiten.Image {
	if img == nil || factor <= 0 || factor == 1 {
		return img
	}

	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := ebiten.NewImage(w, h)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(factor, factor)
	op.Filter = ebiten.FilterLinear
	scaled.DrawImage(img, op)
	return scaled
}
