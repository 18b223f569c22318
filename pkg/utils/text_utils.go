package utils

import (
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"golang.org/x/image/font/basicfont"
)

var (
	defaultFace     *text.GoXFace
	defaultFaceOnce sync.Once
)

// DefaultFace 返回界面使用的等宽字体（basicfont 7x13）
func DefaultFace() *text.GoXFace {
	defaultFaceOnce.Do(func() {
		defaultFace = text.NewGoXFace(basicfont.Face7x13)
	})
	return defaultFace
}

// WrapText 将文本按列数自动换行
//
// 优先在空格处断行，单词超过一行时强制断开。
// 保留原文中的换行符；返回的每个元素为一行。
func WrapText(s string, columns int) []string {
	if columns <= 0 {
		return []string{s}
	}
	wrapped := wrap.String(wordwrap.String(s, columns), columns)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

// MeasureText 测量单行文本宽度（像素）
func MeasureText(s string, face text.Face) float64 {
	w, _ := text.Measure(s, face, 0)
	return w
}

// TruncateLeft 保留 s 末尾不超过 maxWidth 像素的部分
// 用于输入框文本过长时只显示光标附近的内容
func TruncateLeft(s string, face text.Face, maxWidth float64) string {
	runes := []rune(s)
	for len(runes) > 0 && MeasureText(string(runes), face) > maxWidth {
		runes = runes[1:]
	}
	return string(runes)
}
