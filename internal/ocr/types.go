// Package ocr 把 OCR 文本块重建为成绩单表格中的课程行。
//
// 识别引擎只负责给出 {文本, 置信度, 四点多边形}；表头定位、分行、按列取值、
// 学期解析等几何与文本解释都在本包完成。引擎通过 Recognizer 注入，
// 包内不持有全局实例。
package ocr

import "math"

// Point 图像坐标（像素）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Item 识别引擎输出的单个文本区域
type Item struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"` // [0, 1]
	Polygon    [4]Point `json:"polygon"`
}

// RectItem 由轴对齐矩形构造 Item
func RectItem(text string, confidence, x0, y0, x1, y1 float64) Item {
	return Item{
		Text:       text,
		Confidence: confidence,
		Polygon:    [4]Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
	}
}

// Bounds 多边形的外接矩形
func (it Item) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range it.Polygon {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// token 预计算几何量的 Item
type token struct {
	text   string
	cx, cy float64
	h      float64
}

func newToken(it Item) token {
	x0, y0, x1, y1 := it.Bounds()
	return token{
		text: it.Text,
		cx:   (x0 + x1) / 2,
		cy:   (y0 + y1) / 2,
		h:    y1 - y0,
	}
}

// Options 重建参数
type Options struct {
	// MinConfidence 低于该置信度的文本块在重建前丢弃
	MinConfidence float64
	// 各列的水平容差（像素），以表头文本中心为基准
	CodeColumnTolerance   float64
	GradeColumnTolerance  float64
	CreditColumnTolerance float64
	NameColumnTolerance   float64
	// RowGapRatio 相邻文本块中心 y 差小于 RowGapRatio×高度 时视为同一行
	RowGapRatio float64

	// Rescan 在代码列取值失败时对代码单元格重新识别
	Rescan      bool
	RescanPadX  float64
	RescanPadY  float64
	RescanScale int
}

// DefaultOptions 默认重建参数
func DefaultOptions() Options {
	return Options{
		MinConfidence:         0.15,
		CodeColumnTolerance:   40,
		GradeColumnTolerance:  40,
		CreditColumnTolerance: 30,
		NameColumnTolerance:   120,
		RowGapRatio:           0.7,
		Rescan:                true,
		RescanPadX:            40,
		RescanPadY:            12,
		RescanScale:           4,
	}
}

// withDefaults 只补齐几何参数；MinConfidence 为 0 表示不过滤
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CodeColumnTolerance <= 0 {
		o.CodeColumnTolerance = d.CodeColumnTolerance
	}
	if o.GradeColumnTolerance <= 0 {
		o.GradeColumnTolerance = d.GradeColumnTolerance
	}
	if o.CreditColumnTolerance <= 0 {
		o.CreditColumnTolerance = d.CreditColumnTolerance
	}
	if o.NameColumnTolerance <= 0 {
		o.NameColumnTolerance = d.NameColumnTolerance
	}
	if o.RowGapRatio <= 0 {
		o.RowGapRatio = d.RowGapRatio
	}
	if o.RescanPadX <= 0 {
		o.RescanPadX = d.RescanPadX
	}
	if o.RescanPadY <= 0 {
		o.RescanPadY = d.RescanPadY
	}
	if o.RescanScale <= 0 {
		o.RescanScale = d.RescanScale
	}
	return o
}
