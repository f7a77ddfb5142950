package mask

import (
	"errors"
	"fmt"
)

// DefaultThreshold 默认判定阈值，适用于 logit 输出的模型
//
// 输出概率的模型应传 0.5
const DefaultThreshold = 0.0

var (
	// ErrInvalidDimensions 网格尺寸非法
	ErrInvalidDimensions = errors.New("网格尺寸非法")
	// ErrMissingData 原始网格数据量与声明尺寸不符
	ErrMissingData = errors.New("原始网格数据缺失")
)

// Resample 最近邻重采样：将原始评分网格映射到目标分辨率并按阈值二值化
//
// 每个目标像素只取恰好一个源样本，不做插值；小网格放大后呈块状属预期行为。
// 映射坐标按比例向下取整，并钳制到源网格合法范围，防止浮点舍入越界
//
// # Params:
//
//	raw: 推理引擎输出的原始评分网格
//	targetW, targetH: 目标分辨率，通常为原图尺寸
//	threshold: 判定阈值，评分严格大于该值视为前景
func Resample(raw *RawGrid, targetW, targetH int, threshold float32) (*Grid, error) {
	if raw == nil || raw.Width <= 0 || raw.Height <= 0 {
		return nil, fmt.Errorf("%w: 源网格尺寸必须为正", ErrInvalidDimensions)
	}
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("%w: 目标尺寸 %dx%d", ErrInvalidDimensions, targetW, targetH)
	}
	if len(raw.Data) != raw.Width*raw.Height {
		return nil, fmt.Errorf("%w: 期望 %d 个样本，实际 %d 个",
			ErrMissingData, raw.Width*raw.Height, len(raw.Data))
	}

	grid, err := NewGrid(targetW, targetH)
	if err != nil {
		return nil, err
	}

	xRatio := float32(raw.Width) / float32(targetW)
	yRatio := float32(raw.Height) / float32(targetH)

	for y := 0; y < targetH; y++ {
		srcY := int(float32(y) * yRatio)
		if srcY >= raw.Height {
			srcY = raw.Height - 1
		}
		for x := 0; x < targetW; x++ {
			srcX := int(float32(x) * xRatio)
			if srcX >= raw.Width {
				srcX = raw.Width - 1
			}
			if raw.At(srcX, srcY) > threshold {
				grid.Set(x, y, true)
			}
		}
	}
	return grid, nil
}
