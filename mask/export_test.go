package mask

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridImage(t *testing.T) {
	grid := gridFrom(t,
		"#..",
		".#.",
	)

	img := grid.Image()
	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())

	// 前景不透明白色，背景完全透明
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(2, 1))
}

func TestEncodePNG(t *testing.T) {
	grid := gridFrom(t,
		"##..",
		"##..",
		"....",
	)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, grid))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 4, decoded.Bounds().Dx())
	require.Equal(t, 3, decoded.Bounds().Dy())

	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.NotZero(t, a)
	_, _, _, a = decoded.At(3, 2).RGBA()
	assert.Zero(t, a)
}

func TestEncodeWebP(t *testing.T) {
	grid := gridFrom(t,
		"#.",
		".#",
	)

	var buf bytes.Buffer
	require.NoError(t, EncodeWebP(&buf, grid))

	decoded, err := webp.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Bounds().Dx())
	require.Equal(t, 2, decoded.Bounds().Dy())
}

func TestEncodeGeoJSON(t *testing.T) {
	ring := Polygon{{1, 1}, {4, 1}, {4, 4}, {1, 4}}

	var buf bytes.Buffer
	require.NoError(t, EncodeGeoJSON(&buf, ring))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	feature := fc.Features[0]
	require.True(t, feature.Geometry.IsPolygon())
	require.Len(t, feature.Geometry.Polygon, 1)

	coords := feature.Geometry.Polygon[0]
	// 编码前自动闭合
	require.Len(t, coords, 5)
	assert.Equal(t, []float64{1, 1}, coords[0])
	assert.Equal(t, []float64{1, 1}, coords[4])

	units, err := feature.PropertyString("units")
	require.NoError(t, err)
	assert.Equal(t, "pixels", units)
}

func TestEncodeGeoJSONMultiRegion(t *testing.T) {
	rings := []Polygon{
		{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}},
		{{5, 5}, {7, 5}, {7, 7}, {5, 7}, {5, 5}},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeGeoJSON(&buf, rings...))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)
}

func TestEncodeGeoJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeGeoJSON(&buf)
	require.ErrorIs(t, err, ErrNoRegion)
	// 不写出空文件
	assert.Zero(t, buf.Len())
}
