package mask

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrNoRegion 网格中不存在前景区域
var ErrNoRegion = errors.New("未找到前景区域")

// closeGuard 回到起点后允许闭合所需的最小点数
//
// 防止单像素、双像素区域在起步阶段就误判闭合
const closeGuard = 11

// direction 行走朝向，按 右→下→左→右 循环编码
type direction int

const (
	dirRight direction = iota
	dirDown
	dirLeft
	dirUp
)

// deltas 各朝向的单步位移，图像坐标系 (x 向右, y 向下)
var deltas = [4]Point{
	dirRight: {X: 1, Y: 0},
	dirDown:  {X: 0, Y: 1},
	dirLeft:  {X: -1, Y: 0},
	dirUp:    {X: 0, Y: -1},
}

// turnRight 右转
func (d direction) turnRight() direction { return (d + 1) % 4 }

// turnLeft 左转
func (d direction) turnLeft() direction { return (d + 3) % 4 }

// delta 当前朝向的单步位移
func (d direction) delta() Point { return deltas[d] }

// Trace 追踪网格中第一个前景区域的外边界，返回有序多边形环
//
// 右手法则沿墙行走：优先探测右手侧，其次前方，都不通则原地左转。
// 起点为按行扫描遇到的第一个前景像素；网格为空返回 ErrNoRegion。
// 存在多个不连通区域时只追踪扫描序最靠前的一个，其余被忽略，
// 需要全部区域时使用 TraceAll
//
// 正常闭合时环的首尾两点相同；迭代预算 (4*宽*高) 耗尽时返回已累积的
// 不闭合部分环，首尾不同，调用方可在导出时自行补上起点闭合
func Trace(g *Grid) (Polygon, error) {
	return TraceWithLogger(g, zerolog.Nop())
}

// TraceWithLogger 同 Trace，迭代预算耗尽的告警写入指定日志
func TraceWithLogger(g *Grid, logger zerolog.Logger) (Polygon, error) {
	seed, ok := findSeed(g)
	if !ok {
		return nil, ErrNoRegion
	}
	return walkBoundary(g, seed, logger), nil
}

// TraceAll 追踪网格中所有不连通前景区域的外边界
//
// 按扫描序逐个区域追踪，每追踪完一个区域即从工作副本中整体清除，
// 避免同一区域重复出环。空网格返回空切片
func TraceAll(g *Grid) []Polygon {
	work := g.Clone()
	var rings []Polygon

	for {
		seed, ok := findSeed(work)
		if !ok {
			return rings
		}
		rings = append(rings, walkBoundary(work, seed, zerolog.Nop()))
		fillRegion(work, seed)
	}
}

// findSeed 按行从上到下、行内从左到右扫描第一个前景像素
func findSeed(g *Grid) (Point, bool) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Get(x, y) {
				return Point{X: x, Y: y}, true
			}
		}
	}
	return Point{}, false
}

// walkBoundary 从 seed 出发沿墙行走，seed 必须为前景像素
func walkBoundary(g *Grid, seed Point, logger zerolog.Logger) Polygon {
	pos := seed
	dir := dirRight
	budget := 4 * g.Width() * g.Height()

	ring := make(Polygon, 0, 64)
	for step := 0; step < budget; step++ {
		if pos == seed && len(ring) >= closeGuard {
			// 闭合成环
			return append(ring, seed)
		}
		ring = append(ring, pos)

		// 右手侧有墙则贴墙右转，前方无墙则原地左转重新探测
		right := dir.turnRight()
		rd := right.delta()
		fd := dir.delta()
		switch {
		case g.Get(pos.X+rd.X, pos.Y+rd.Y):
			dir = right
			pos = Point{X: pos.X + rd.X, Y: pos.Y + rd.Y}
		case g.Get(pos.X+fd.X, pos.Y+fd.Y):
			pos = Point{X: pos.X + fd.X, Y: pos.Y + fd.Y}
		default:
			dir = dir.turnLeft()
		}
	}

	// 预算耗尽，按约定返回不闭合的部分环
	logger.Warn().
		Int("points", len(ring)).
		Int("budget", budget).
		Msg("边界追踪迭代预算耗尽，返回不闭合环")
	return ring
}

// fillRegion 4 连通洪泛填充，将 seed 所在前景区域整体清除
func fillRegion(g *Grid, seed Point) {
	stack := []Point{seed}
	g.Set(seed.X, seed.Y, false)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range deltas {
			nx, ny := p.X+d.X, p.Y+d.Y
			if g.Get(nx, ny) {
				g.Set(nx, ny, false)
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}
}
