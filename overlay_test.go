package segment

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/getcharzp/go-segment/mask"
)

func newGrayImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 64, G: 64, B: 64, A: 255})
		}
	}
	return img
}

func TestOverlayMask(t *testing.T) {
	grid, err := mask.NewGrid(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	grid.Set(1, 1, true)

	out := OverlayMask(newGrayImage(4, 4), grid, DefaultOverlayColor, 1.0)

	// 未覆盖像素保持原色
	bg := out.NRGBAAt(0, 0)
	if bg.R != 64 || bg.G != 64 || bg.B != 64 {
		t.Fatalf("未覆盖像素被改写: %+v", bg)
	}

	// 覆盖像素应偏向叠加色
	fg := out.NRGBAAt(1, 1)
	if fg.B <= fg.R {
		t.Fatalf("覆盖像素未着色: %+v", fg)
	}
}

func TestTextDrawerDrawText(t *testing.T) {
	d, err := NewTextDrawerFromData(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if err := d.SetSize(16); err != nil {
		t.Fatal(err)
	}

	img := newGrayImage(64, 32)
	d.DrawText(img, "mask", 4, 24, color.White)

	// 至少有一个像素被文字覆盖
	touched := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 64 {
			touched = true
			break
		}
	}
	if !touched {
		t.Fatal("文本未绘制到图像上")
	}
}

func TestDrawPromptMarkers(t *testing.T) {
	img := newGrayImage(16, 16)

	DrawPromptMarkers(img, []PromptMarker{
		{X: 4, Y: 4, Foreground: true},
		{X: 12, Y: 12, Foreground: false},
	}, 2)

	fg := img.NRGBAAt(4, 4)
	if fg.G != 255 || fg.R != 0 {
		t.Fatalf("前景点应为绿色: %+v", fg)
	}

	bg := img.NRGBAAt(12, 12)
	if bg.R != 255 || bg.G != 0 {
		t.Fatalf("背景点应为红色: %+v", bg)
	}
}
