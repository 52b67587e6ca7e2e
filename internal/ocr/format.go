package ocr

import (
	"strings"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/term"
)

// FormatRows 把重建结果渲染为纯文本；groupBySemester 时按学期分块并排序
func FormatRows(records []model.CourseRecord, groupBySemester bool) string {
	if len(records) == 0 {
		return "파싱된 데이터가 없습니다."
	}
	line := func(parts ...string) string {
		var kept []string
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, " ")
	}
	retake := func(r model.CourseRecord) string {
		if r.Retake {
			return "재수강"
		}
		return ""
	}

	if !groupBySemester {
		lines := make([]string, 0, len(records))
		for _, r := range records {
			lines = append(lines, line(r.Semester, r.Code, r.Grade, retake(r)))
		}
		return strings.Join(lines, "\n")
	}

	groups := make(map[string][]model.CourseRecord)
	var order []string
	for _, r := range records {
		sem := r.Semester
		if sem == "" {
			sem = term.Other
		}
		if _, ok := groups[sem]; !ok {
			order = append(order, sem)
		}
		groups[sem] = append(groups[sem], r)
	}
	term.Sort(order)

	blocks := make([]string, 0, len(order))
	for _, sem := range order {
		lines := []string{"--- " + sem + " 학기 ---"}
		for _, r := range groups[sem] {
			lines = append(lines, line(r.Code, r.Grade, retake(r)))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
