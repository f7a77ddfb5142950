package mask

import "image"

// Point 整数像素坐标
type Point struct {
	X int
	Y int
}

// Polygon 有序像素坐标环
//
// 首尾两点相同视为闭合环；不同则为预算耗尽产生的部分环
type Polygon []Point

// Closed 判断环是否闭合
func (p Polygon) Closed() bool {
	return len(p) >= 2 && p[0] == p[len(p)-1]
}

// Close 返回闭合后的环，必要时补上起点
func (p Polygon) Close() Polygon {
	if len(p) == 0 || p.Closed() {
		return p
	}
	return append(append(Polygon{}, p...), p[0])
}

// BoundingBox 环上所有点的最小外接矩形，像素矩形约定 (Max 开区间)
func (p Polygon) BoundingBox() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := p[0].X, p[0].Y
	for _, pt := range p[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Simplify 规范化环：去掉连续重复点、多余圈数与共线段中间点
//
// 沿墙行走在转向时会原地追加重复点；小区域受最小点数闭合保护的影响
// 会在闭合前多走整圈。两者都只是行走痕迹，简化后不改变环所围的区域
func (p Polygon) Simplify() Polygon {
	if len(p) < 2 {
		return append(Polygon{}, p...)
	}

	// 去重
	dedup := make(Polygon, 0, len(p))
	dedup = append(dedup, p[0])
	for _, pt := range p[1:] {
		if pt != dedup[len(dedup)-1] {
			dedup = append(dedup, pt)
		}
	}

	// 截断到首次回到起点，丢弃重复圈
	for i := 1; i < len(dedup); i++ {
		if dedup[i] == dedup[0] {
			dedup = dedup[:i+1]
			break
		}
	}
	if len(dedup) < 3 {
		return dedup
	}

	// 去共线中间点，保留首尾
	out := make(Polygon, 0, len(dedup))
	out = append(out, dedup[0])
	for i := 1; i < len(dedup)-1; i++ {
		a := out[len(out)-1]
		b := dedup[i]
		c := dedup[i+1]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross != 0 {
			out = append(out, b)
		}
	}
	return append(out, dedup[len(dedup)-1])
}

// Rasterize 将闭合环的边界与内部回填为占用网格
//
// 边界按整数直线逐边描画，内部按奇偶规则逐像素判定。
// 主要用于环与网格的一致性校验，以及对环做后处理的调用方
func (p Polygon) Rasterize(width, height int) (*Grid, error) {
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return grid, nil
	}

	ring := p.Close()
	for i := 0; i < len(ring)-1; i++ {
		drawLine(grid, ring[i], ring[i+1])
	}

	box := ring.BoundingBox()
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if !grid.Get(x, y) && ring.contains(x, y) {
				grid.Set(x, y, true)
			}
		}
	}
	return grid, nil
}

// contains 奇偶规则判定点是否在闭合环内部，环上点不保证判定为真
func (p Polygon) contains(x, y int) bool {
	inside := false
	n := len(p)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, yj := p[i].Y, p[j].Y
		if (yi > y) == (yj > y) {
			continue
		}
		xi, xj := p[i].X, p[j].X
		crossX := float64(xj-xi)*float64(y-yi)/float64(yj-yi) + float64(xi)
		if float64(x) < crossX {
			inside = !inside
		}
	}
	return inside
}

// drawLine Bresenham 整数直线
func drawLine(g *Grid, a, b Point) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	x, y := a.X, a.Y
	for {
		g.Set(x, y, true)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
