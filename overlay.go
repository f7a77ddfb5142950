package segment

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/disintegration/imaging"
	"github.com/getcharzp/go-segment/mask"
	"github.com/up-zero/gotool/imageutil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultOverlayColor 默认叠加色
var DefaultOverlayColor = color.NRGBA{R: 30, G: 144, B: 255, A: 255}

// OverlayMask 将占用网格以半透明色叠加到原图上
//
// # Params:
//
//	img: 原图
//	grid: 占用网格，尺寸应与原图一致
//	tint: 叠加色
//	opacity: 叠加不透明度，0-1
func OverlayMask(img image.Image, grid *mask.Grid, tint color.NRGBA, opacity float64) *image.NRGBA {
	layer := image.NewNRGBA(image.Rect(0, 0, grid.Width(), grid.Height()))
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if grid.Get(x, y) {
				layer.SetNRGBA(x, y, tint)
			}
		}
	}
	return imaging.Overlay(img, layer, image.Pt(0, 0), opacity)
}

// PromptMarker 叠加图上的提示点标记
type PromptMarker struct {
	X, Y       int
	Foreground bool
}

// DrawPromptMarkers 将提示点绘制到图片上，前景绿色，背景红色
//
// # Params:
//
//	img: 被绘制的图像
//	markers: 提示点标记
//	radius: 标记半径
func DrawPromptMarkers(img draw.Image, markers []PromptMarker, radius int) {
	fgColor := color.RGBA{G: 255, A: 255} // 绿色前景点
	bgColor := color.RGBA{R: 255, A: 255} // 红色背景点

	for _, m := range markers {
		c := color.Color(bgColor)
		if m.Foreground {
			c = fgColor
		}
		imageutil.DrawFilledCircle(img, image.Point{X: m.X, Y: m.Y}, radius, c)
	}
}

// TextDrawer 文本绘制工具
type TextDrawer struct {
	font     *opentype.Font
	face     font.Face
	fontSize float64
}

// NewTextDrawer 创建文本绘制工具
//
// # Params:
//
//	fontPath: 字体路径
func NewTextDrawer(fontPath string) (*TextDrawer, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("打开字体文件失败：%w", err)
	}
	return NewTextDrawerFromData(fontBytes)
}

// NewTextDrawerFromData 从内存中的字体数据创建文本绘制工具
//
// # Params:
//
//	fontBytes: TTF/OTF 字体数据
func NewTextDrawerFromData(fontBytes []byte) (*TextDrawer, error) {
	ttFont, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("解析字体文件失败：%w", err)
	}

	d := &TextDrawer{font: ttFont}
	if err := d.SetSize(12); err != nil {
		return nil, err
	}
	return d, nil
}

// SetSize 动态调整字体大小
//
// # Params:
//
//	fontSize: 字体大小
func (d *TextDrawer) SetSize(fontSize float64) error {
	if d.face != nil && d.fontSize == fontSize {
		return nil
	}

	// 释放旧 Face 内存
	if d.face != nil {
		d.face.Close()
	}

	nf, err := opentype.NewFace(d.font, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}

	d.face = nf
	d.fontSize = fontSize
	return nil
}

// DrawText 绘制文本
//
// # Params:
//
//	img: 被绘制的图像
//	text: 绘制的文本
//	x, y: 绘制的坐标
//	c: 绘制的颜色
func (d *TextDrawer) DrawText(img draw.Image, text string, x, y int, c color.Color) {
	point := fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(y),
	}

	d1 := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c), // 文字颜色源
		Face: d.face,
		Dot:  point, // 开始绘制的点
	}
	d1.DrawString(text)
}

// Close 释放资源
func (d *TextDrawer) Close() {
	if d.face != nil {
		d.face.Close()
	}
}
