package utils

// Point 屏幕坐标点
type Point struct {
	X, Y float64
}

// PointInRect 判断点是否在矩形 [x, x+w) x [y, y+h) 内
func PointInRect(px, py, x, y, w, h float64) bool {
	return px >= x && px < x+w && py >= y && py < y+h
}

// PointInPolygon 使用射线法判断点是否在多边形内
// 顶点按顺序给出，首尾自动闭合；少于 3 个顶点时返回 false
func PointInPolygon(px, py float64, poly []Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > py) != (yj > py) {
			xCross := (xj-xi)*(py-yi)/(yj-yi) + xi
			if px < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
