package mask

import "fmt"

// Grid 二值占用网格，行优先存储，每个像素一个布尔值
//
// 由 Resample 从模型输出构建，生成后不再修改；索引访问均做边界检查，
// 避免在平铺缓冲区上重复手写下标运算
type Grid struct {
	width  int
	height int
	cells  []bool
}

// NewGrid 创建空网格
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}, nil
}

// Width 网格宽度
func (g *Grid) Width() int { return g.width }

// Height 网格高度
func (g *Grid) Height() int { return g.height }

// Get 读取 (x, y) 处的占用值，越界返回 false
func (g *Grid) Get(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	return g.cells[y*g.width+x]
}

// Set 写入 (x, y) 处的占用值，越界时不做任何操作
func (g *Grid) Set(x, y int, occupied bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = occupied
}

// Count 统计前景像素数
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Clone 深拷贝网格
func (g *Grid) Clone() *Grid {
	cells := make([]bool, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// RawGrid 推理引擎输出的原始评分网格 (logit 或概率)，行优先存储
//
// 分辨率通常与原图不同，使用前必须经 Resample 映射到目标分辨率
type RawGrid struct {
	Width  int
	Height int
	Data   []float32
}

// At 读取 (x, y) 处的评分，调用方保证坐标合法
func (r *RawGrid) At(x, y int) float32 {
	return r.Data[y*r.Width+x]
}
