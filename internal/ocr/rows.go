package ocr

import (
	"math"
	"sort"
	"strings"
)

type row []token

// groupRows 按中心 y 排序后聚类：与上一个文本块的 y 差小于 ratio×高度 即同行。
// 行内按中心 x 从左到右排序。
func groupRows(tokens []token, ratio float64) []row {
	if len(tokens) == 0 {
		return nil
	}
	sorted := make([]token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].cy < sorted[j].cy })

	var rows []row
	cur := row{sorted[0]}
	for _, t := range sorted[1:] {
		prev := cur[len(cur)-1]
		if t.cy-prev.cy < ratio*math.Max(prev.h, t.h) {
			cur = append(cur, t)
			continue
		}
		rows = append(rows, cur)
		cur = row{t}
	}
	rows = append(rows, cur)

	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].cx < r[j].cx })
	}
	return rows
}

func (r row) texts() []string {
	out := make([]string, len(r))
	for i, t := range r {
		out[i] = t.text
	}
	return out
}

func (r row) text(sep string) string { return strings.Join(r.texts(), sep) }

func (r row) centerY() float64 {
	var sum float64
	for _, t := range r {
		sum += t.cy
	}
	return sum / float64(len(r))
}

// column 中心 x 落在 x±tol 内的文本块
func (r row) column(x, tol float64) row {
	var out row
	for _, t := range r {
		if math.Abs(t.cx-x) <= tol {
			out = append(out, t)
		}
	}
	return out
}
