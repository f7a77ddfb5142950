package mask

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	geojson "github.com/paulmach/go.geojson"
)

// Image 将占用网格无损编码为图像：前景为不透明白色，其余完全透明
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] {
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return img
}

// EncodePNG 将占用网格编码为透明背景 PNG
func EncodePNG(w io.Writer, g *Grid) error {
	if err := png.Encode(w, g.Image()); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}

// EncodeWebP 将占用网格无损编码为透明背景 WebP
func EncodeWebP(w io.Writer, g *Grid) error {
	if err := webp.Encode(w, g.Image(), &webp.Options{Lossless: true}); err != nil {
		return fmt.Errorf("编码 WebP 失败: %w", err)
	}
	return nil
}

// EncodeGeoJSON 将边界环导出为 GeoJSON FeatureCollection
//
// 坐标为像素单位而非经纬度，每个环对应一个 Polygon Feature，
// 编码前自动闭合。无环可导出时返回包装的 ErrNoRegion，
// 调用方应提示"无内容可导出"而不是写出空文件
func EncodeGeoJSON(w io.Writer, rings ...Polygon) error {
	if len(rings) == 0 {
		return fmt.Errorf("无内容可导出: %w", ErrNoRegion)
	}

	fc := geojson.NewFeatureCollection()
	for i, ring := range rings {
		closed := ring.Close()
		coords := make([][]float64, 0, len(closed))
		for _, pt := range closed {
			coords = append(coords, []float64{float64(pt.X), float64(pt.Y)})
		}
		feature := geojson.NewPolygonFeature([][][]float64{coords})
		feature.SetProperty("units", "pixels")
		feature.SetProperty("region", i)
		fc.AddFeature(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("编码 GeoJSON 失败: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("写出 GeoJSON 失败: %w", err)
	}
	return nil
}
