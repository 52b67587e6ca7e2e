package ocr

import (
	"context"
	"strconv"
	"strings"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/term"
)

// Rescanner 对某一行的代码单元格做二次识别。
// x、y 为原图坐标；返回的文本块坐标不作要求，只使用文本。
type Rescanner interface {
	Rescan(ctx context.Context, x, y float64) ([]Item, error)
}

// Reconstructor 单页成绩单表格重建器
type Reconstructor struct {
	opts      Options
	rescanner Rescanner
}

// NewReconstructor rescanner 可为 nil
func NewReconstructor(opts Options, rescanner Rescanner) *Reconstructor {
	return &Reconstructor{opts: opts.withDefaults(), rescanner: rescanner}
}

// Reconstruct 不带二次识别的便捷入口
func Reconstruct(items []Item, opts Options) []model.CourseRecord {
	return NewReconstructor(opts, nil).Reconstruct(context.Background(), items)
}

// Reconstruct 把一页的文本块重建为课程行（自上而下）。
// 找不到表头时返回空结果；取不到代码的行被跳过。
func (r *Reconstructor) Reconstruct(ctx context.Context, items []Item) []model.CourseRecord {
	tokens := make([]token, 0, len(items))
	for _, it := range items {
		if it.Confidence < r.opts.MinConfidence || strings.TrimSpace(it.Text) == "" {
			continue
		}
		tokens = append(tokens, newToken(it))
	}

	hdr, ok := locateHeader(tokens)
	if !ok {
		return []model.CourseRecord{}
	}

	var above []string
	var data []token
	for i, t := range tokens {
		if t.cy > hdr.y && !hdr.labels[i] {
			data = append(data, t)
		} else {
			above = append(above, t.text)
		}
	}
	semester, _ := term.FindHeader(strings.Join(above, " "))

	records := []model.CourseRecord{}
	for _, rw := range groupRows(data, r.opts.RowGapRatio) {
		code, ok := r.extractCode(ctx, hdr, rw)
		if !ok {
			// 表头行中未识别的列名（如 이수구분）不能被当作表尾
			if len(records) > 0 && isFooter(rw.text("")) {
				break
			}
			continue
		}
		rec := model.CourseRecord{
			Code:     code,
			Grade:    r.extractGrade(hdr, rw),
			Retake:   isRetake(rw.texts()),
			Semester: semester,
		}
		if hdr.hasCredit {
			rec.Credit = extractCredit(rw.column(hdr.creditX, r.opts.CreditColumnTolerance))
		}
		if hdr.hasName {
			rec.Name = strings.TrimSpace(rw.column(hdr.nameX, r.opts.NameColumnTolerance).text(" "))
		}
		records = append(records, rec)
	}
	return records
}

// extractCode 代码列 → 二次识别 → 整行 6 位数字
func (r *Reconstructor) extractCode(ctx context.Context, hdr header, rw row) (string, bool) {
	if code, ok := codeFromColumn(rw.column(hdr.codeX, r.opts.CodeColumnTolerance)); ok {
		return code, true
	}
	if r.rescanner != nil && ctx.Err() == nil {
		if items, err := r.rescanner.Rescan(ctx, hdr.codeX, rw.centerY()); err == nil && len(items) > 0 {
			texts := make([]string, 0, len(items))
			for _, it := range items {
				texts = append(texts, it.Text)
			}
			if code, ok := correctCode(strings.Join(texts, "")); ok {
				return code, true
			}
		}
	}
	return codeFromText(rw.text(" "))
}

func (r *Reconstructor) extractGrade(hdr header, rw row) string {
	if hdr.hasGrade {
		if g, ok := extractGrade(rw.column(hdr.gradeX, r.opts.GradeColumnTolerance).texts()); ok {
			return g
		}
	}
	g, _ := extractGrade(rw.texts())
	return g
}

// extractCredit 学分列的单个 0-9 整数（允许 "3.0"）
func extractCredit(col row) int {
	for _, t := range col {
		s := strings.TrimSuffix(stripSpace(t.text), ".0")
		if len(s) != 1 {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}
