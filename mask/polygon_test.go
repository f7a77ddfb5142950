package mask

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonClosed(t *testing.T) {
	open := Polygon{{1, 1}, {3, 1}, {3, 3}}
	assert.False(t, open.Closed())

	closed := open.Close()
	assert.True(t, closed.Closed())
	assert.Equal(t, Point{X: 1, Y: 1}, closed[len(closed)-1])
	// 原环不被修改
	assert.Len(t, open, 3)

	// 已闭合的环不再追加
	assert.Len(t, closed.Close(), 4)

	assert.False(t, Polygon{}.Closed())
	assert.False(t, Polygon{{2, 2}}.Closed())
}

func TestPolygonBoundingBox(t *testing.T) {
	ring := Polygon{{2, 3}, {5, 3}, {5, 6}, {2, 6}, {2, 3}}
	assert.Equal(t, image.Rect(2, 3, 6, 7), ring.BoundingBox())

	assert.Equal(t, image.Rectangle{}, Polygon{}.BoundingBox())
}

func TestPolygonSimplify(t *testing.T) {
	// 原地转向产生的重复点与共线段中间点都被去掉
	ring := Polygon{
		{1, 1}, {1, 2}, {1, 3}, {1, 3},
		{2, 3}, {3, 3}, {3, 3},
		{3, 2}, {3, 1}, {3, 1},
		{2, 1}, {1, 1},
	}

	simplified := ring.Simplify()
	assert.Equal(t, Polygon{{1, 1}, {1, 3}, {3, 3}, {3, 1}, {1, 1}}, simplified)
}

func TestPolygonSimplifyDropsExtraLaps(t *testing.T) {
	// 闭合保护导致的多圈行走在简化时截断为单圈
	ring := Polygon{
		{1, 1}, {1, 2}, {2, 2}, {2, 1},
		{1, 1}, {1, 2}, {2, 2}, {2, 1},
		{1, 1},
	}

	simplified := ring.Simplify()
	assert.Equal(t, Polygon{{1, 1}, {1, 2}, {2, 2}, {2, 1}, {1, 1}}, simplified)
}

func TestPolygonRasterize(t *testing.T) {
	ring := Polygon{{1, 1}, {4, 1}, {4, 4}, {1, 4}}

	grid, err := ring.Rasterize(6, 6)
	require.NoError(t, err)

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			inside := x >= 1 && x <= 4 && y >= 1 && y <= 4
			assert.Equalf(t, inside, grid.Get(x, y), "像素 (%d, %d)", x, y)
		}
	}
}

func TestPolygonRasterizeInvalid(t *testing.T) {
	_, err := Polygon{{0, 0}}.Rasterize(0, 5)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestGridBounds(t *testing.T) {
	grid, err := NewGrid(3, 2)
	require.NoError(t, err)

	// 越界读写不 panic，读返回 false
	assert.False(t, grid.Get(-1, 0))
	assert.False(t, grid.Get(3, 0))
	assert.False(t, grid.Get(0, 2))
	grid.Set(99, 99, true)
	assert.Equal(t, 0, grid.Count())

	grid.Set(2, 1, true)
	assert.True(t, grid.Get(2, 1))
	assert.Equal(t, 1, grid.Count())

	_, err = NewGrid(0, 5)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}
