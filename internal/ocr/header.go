package ocr

import (
	"math"
	"strings"
	"unicode"
)

// header 表头行：代码列必需，其余列可选
type header struct {
	y float64 // 代码列表头中心 y，中心低于它的文本块才是数据

	// labels 已识别的表头文本块下标，不参与数据行
	labels map[int]bool

	codeX   float64
	gradeX  float64
	creditX float64
	nameX   float64

	hasGrade  bool
	hasCredit bool
	hasName   bool
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// isCodeHeader "학수번호"（课程代码）表头，允许识别残缺
func isCodeHeader(s string) bool {
	s = stripSpace(s)
	return strings.Contains(s, "학수") && strings.Contains(s, "번")
}

func isGradeHeader(s string) bool {
	switch stripSpace(s) {
	case "성적", "등급", "평어":
		return true
	}
	return false
}

func isCreditHeader(s string) bool {
	return stripSpace(s) == "학점"
}

func isNameHeader(s string) bool {
	s = stripSpace(s)
	return strings.Contains(s, "교과목명") || strings.Contains(s, "과목명")
}

// locateHeader 找到代码列表头；同一行上的成绩、学分、课程名表头一并记录
func locateHeader(tokens []token) (header, bool) {
	var (
		h     header
		found bool
		code  token
	)
	for i, t := range tokens {
		if isCodeHeader(t.text) {
			code, found = t, true
			h.labels = map[int]bool{i: true}
			break
		}
	}
	if !found {
		return h, false
	}

	h.y = code.cy
	h.codeX = code.cx

	sameRow := func(t token) bool {
		return math.Abs(t.cy-code.cy) <= math.Max(t.h, code.h)
	}
	for i, t := range tokens {
		if !sameRow(t) {
			continue
		}
		switch {
		case !h.hasGrade && isGradeHeader(t.text):
			h.gradeX, h.hasGrade = t.cx, true
		case !h.hasCredit && isCreditHeader(t.text):
			h.creditX, h.hasCredit = t.cx, true
		case !h.hasName && isNameHeader(t.text):
			h.nameX, h.hasName = t.cx, true
		default:
			continue
		}
		h.labels[i] = true
	}
	return h, true
}

// footers 表尾汇总行关键字，出现即表格结束
var footers = []string{"신청학점", "전체성적", "취득학점", "증명평점", "백점만점환산점수", "평점", "평균", "이수구분"}

func isFooter(text string) bool {
	text = stripSpace(text)
	for _, f := range footers {
		if strings.Contains(text, f) {
			return true
		}
	}
	return false
}
