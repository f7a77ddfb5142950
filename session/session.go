package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/getcharzp/go-segment"
	"github.com/getcharzp/go-segment/mask"
	"github.com/getcharzp/go-segment/sam"
)

var (
	// ErrNoImage 尚未加载图片
	ErrNoImage = errors.New("尚未加载图片")
	// ErrNoPoints 尚未放置提示点
	ErrNoPoints = errors.New("尚未放置提示点")
	// ErrNoMask 尚未执行分割
	ErrNoMask = errors.New("尚未执行分割")
)

// markerRadius 叠加图上提示点标记的半径
const markerRadius = 5

// Decoder 单张图片的解码上下文
type Decoder interface {
	DecodeRaw(points []sam.Point) (*mask.RawGrid, float32, error)
	Destroy()
}

// Engine 推理引擎边界，便于在无 ONNX 环境下测试会话逻辑
type Engine interface {
	EncodeImage(img image.Image) (Decoder, error)
}

// WrapEngine 将 SAM 引擎适配为会话引擎
func WrapEngine(e *sam.Engine) Engine {
	return samEngine{engine: e}
}

type samEngine struct {
	engine *sam.Engine
}

func (w samEngine) EncodeImage(img image.Image) (Decoder, error) {
	return w.engine.EncodeImage(img)
}

// PromptPoint 提示点，原图像素坐标
type PromptPoint struct {
	X     int
	Y     int
	Label sam.Label
}

// Option 会话可选参数
type Option func(*Session)

// WithLogger 设置会话日志输出
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithThreshold 设置二值化阈值，输出概率的模型应传 0.5
func WithThreshold(threshold float32) Option {
	return func(s *Session) { s.threshold = threshold }
}

// WithTextDrawer 设置文本绘制工具，叠加图上的提示点将标注序号
//
// 绘制工具的生命周期由调用方管理，会话关闭时不会释放
func WithTextDrawer(drawer *segment.TextDrawer) Option {
	return func(s *Session) { s.textDrawer = drawer }
}

// Session 一次交互式分割会话
//
// 持有当前图片、提示点列表和最近一次分割结果；加载新图片时整体重置，
// 不做任何持久化。会话内所有状态变更均为单线程同步操作
type Session struct {
	id         string
	engine     Engine
	logger     zerolog.Logger
	threshold  float32
	textDrawer *segment.TextDrawer

	img    image.Image
	ctx    Decoder
	points []PromptPoint
	grid   *mask.Grid
	score  float32
}

// New 创建会话
func New(engine Engine, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New().String(),
		engine:    engine,
		logger:    zerolog.Nop(),
		threshold: mask.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID 会话标识
func (s *Session) ID() string { return s.id }

// LoadImage 加载新图片并提取特征，旧图片、提示点和分割结果整体丢弃
func (s *Session) LoadImage(img image.Image) error {
	ctx, err := s.engine.EncodeImage(img)
	if err != nil {
		return fmt.Errorf("图片特征提取失败: %w", err)
	}

	if s.ctx != nil {
		s.ctx.Destroy()
	}
	s.img = img
	s.ctx = ctx
	s.points = nil
	s.grid = nil
	s.score = 0

	bounds := img.Bounds()
	s.logger.Info().
		Str("session", s.id).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("加载图片")
	return nil
}

// AddPoint 放置提示点
func (s *Session) AddPoint(x, y int, label sam.Label) {
	s.points = append(s.points, PromptPoint{X: x, Y: y, Label: label})
}

// UndoPoint 撤销最近一个提示点
func (s *Session) UndoPoint() {
	if len(s.points) > 0 {
		s.points = s.points[:len(s.points)-1]
	}
}

// ClearPoints 清空提示点
func (s *Session) ClearPoints() {
	s.points = nil
}

// Points 当前提示点列表
func (s *Session) Points() []PromptPoint {
	out := make([]PromptPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Segment 按当前提示点执行一次分割，结果替换上一次的占用网格
//
// 推理引擎的内部失败不做区分，统一包装上报
func (s *Session) Segment() error {
	if s.ctx == nil {
		return ErrNoImage
	}
	if len(s.points) == 0 {
		return ErrNoPoints
	}

	points := make([]sam.Point, 0, len(s.points))
	for _, p := range s.points {
		points = append(points, sam.Point{X: float32(p.X), Y: float32(p.Y), Label: p.Label})
	}

	raw, score, err := s.ctx.DecodeRaw(points)
	if err != nil {
		return fmt.Errorf("分割失败: %w", err)
	}

	bounds := s.img.Bounds()
	grid, err := mask.Resample(raw, bounds.Dx(), bounds.Dy(), s.threshold)
	if err != nil {
		return fmt.Errorf("mask 重采样失败: %w", err)
	}

	s.grid = grid
	s.score = score
	s.logger.Info().
		Str("session", s.id).
		Int("points", len(s.points)).
		Float32("score", score).
		Int("foreground", grid.Count()).
		Msg("分割完成")
	return nil
}

// Grid 最近一次分割的占用网格，尚未分割返回 nil
func (s *Session) Grid() *mask.Grid { return s.grid }

// Score 最近一次分割的置信度
func (s *Session) Score() float32 { return s.score }

// Overlay 渲染叠加图：半透明 mask 覆盖原图，并标出所有提示点
func (s *Session) Overlay() (image.Image, error) {
	if s.img == nil {
		return nil, ErrNoImage
	}
	if s.grid == nil {
		return nil, ErrNoMask
	}

	out := segment.OverlayMask(s.img, s.grid, segment.DefaultOverlayColor, 0.5)

	markers := make([]segment.PromptMarker, 0, len(s.points))
	for _, p := range s.points {
		markers = append(markers, segment.PromptMarker{
			X:          p.X,
			Y:          p.Y,
			Foreground: p.Label == sam.LabelForeground,
		})
	}
	segment.DrawPromptMarkers(out, markers, markerRadius)

	// 按放置顺序标注提示点序号
	if s.textDrawer != nil {
		for i, m := range markers {
			s.textDrawer.DrawText(out, strconv.Itoa(i+1),
				m.X+markerRadius+2, m.Y-markerRadius-2, color.White)
		}
	}
	return out, nil
}

// ExportMaskPNG 导出透明背景 PNG mask
func (s *Session) ExportMaskPNG(w io.Writer) error {
	if s.grid == nil {
		return ErrNoMask
	}
	return mask.EncodePNG(w, s.grid)
}

// ExportMaskWebP 导出透明背景 WebP mask
func (s *Session) ExportMaskWebP(w io.Writer) error {
	if s.grid == nil {
		return ErrNoMask
	}
	return mask.EncodeWebP(w, s.grid)
}

// ExportOutline 追踪 mask 边界并导出 GeoJSON 轮廓
//
// mask 为空时返回包装的 mask.ErrNoRegion，调用方应提示"无内容可导出"
func (s *Session) ExportOutline(w io.Writer) error {
	if s.grid == nil {
		return ErrNoMask
	}

	ring, err := mask.TraceWithLogger(s.grid, s.logger)
	if err != nil {
		return fmt.Errorf("无内容可导出: %w", err)
	}
	return mask.EncodeGeoJSON(w, ring.Simplify())
}

// Close 释放图片特征缓存
func (s *Session) Close() {
	if s.ctx != nil {
		s.ctx.Destroy()
		s.ctx = nil
	}
}
