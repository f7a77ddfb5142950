package sam

import (
	"image"

	"github.com/getcharzp/go-segment/mask"
)

// normalizeAndPad 归一化和填充
func normalizeAndPad(src image.Image, targetW, targetH int) []float32 {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float32, 3*targetW*targetH)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 0-65535
			rf := float32(r) / 65535.0
			gf := float32(g) / 65535.0
			bf := float32(b) / 65535.0

			rf = (rf - MeanR) / StdR
			gf = (gf - MeanG) / StdG
			bf = (bf - MeanB) / StdB

			// 目标索引 (CHW)
			idx := y*targetW + x
			data[idx] = rf
			data[targetW*targetH+idx] = gf
			data[2*targetW*targetH+idx] = bf
		}
	}
	return data
}

// extractValidRegion 从 logit 平面左上角截取有效区域
//
// Decoder 输出固定 logitsDim 边长的方形平面，真实内容只占
// validW x validH 的左上区域，其余为填充
func extractValidRegion(logits []float32, dim, validW, validH int) *mask.RawGrid {
	data := make([]float32, 0, validW*validH)
	for y := 0; y < validH; y++ {
		row := logits[y*dim : y*dim+validW]
		data = append(data, row...)
	}
	return &mask.RawGrid{
		Width:  validW,
		Height: validH,
		Data:   data,
	}
}
