package analysis

import (
	"strings"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/coursecode"
	"gradcheck/backend/pkg/term"
)

// UnregisteredName 课程记录与目录都没有名称时的占位名
const UnregisteredName = "미등록과목"

// FilterCountable 去除 F 成绩与重修记录。
// 调用方在每次分析前对原始存储数据调用一次，不做缓存。
func FilterCountable(records []model.CourseRecord) []model.CourseRecord {
	out := make([]model.CourseRecord, 0, len(records))
	for _, r := range records {
		if r.Countable() {
			out = append(out, r)
		}
	}
	return out
}

// ResolveCredit 有效学分，优先级：
//  1. 课程记录自身的非零学分
//  2. 目录 code→credit
//  3. 0
func ResolveCredit(c model.CourseRecord, idx *Index) int {
	if c.Credit > 0 {
		return c.Credit
	}
	if v, ok := idx.CodeToCredit[coursecode.Normalize(c.Code)]; ok {
		return v
	}
	return 0
}

// ResolveName 展示名，优先级：课程记录名称 → 目录名称 → UnregisteredName
func ResolveName(c model.CourseRecord, idx *Index) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	if item, ok := idx.CatalogItem(c.Code); ok && strings.TrimSpace(item.Name) != "" {
		return item.Name
	}
	return UnregisteredName
}

// ResolveCategory 展示类别：目录中首次出现的类别 → UncategorizedLabel
func ResolveCategory(c model.CourseRecord, idx *Index) string {
	if label, ok := idx.CodeToCategory[coursecode.Normalize(c.Code)]; ok {
		return label
	}
	return UncategorizedLabel
}

// ResolveSemester 规范学期，缺失时为 "기타"
func ResolveSemester(c model.CourseRecord) string {
	if s := strings.TrimSpace(c.Semester); s != "" {
		return s
	}
	return term.Other
}

// Course 解析后的有效课程
type Course struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Credit   int    `json:"credit"`
	Type     string `json:"type"`
	Grade    string `json:"grade"`
	Semester string `json:"semester"`

	norm string
}

// NormalizedCode 规范代码
func (c Course) NormalizedCode() string { return c.norm }

func resolveCourse(r model.CourseRecord, idx *Index) Course {
	return Course{
		Code:     r.Code,
		Name:     ResolveName(r, idx),
		Credit:   ResolveCredit(r, idx),
		Type:     ResolveCategory(r, idx),
		Grade:    r.Grade,
		Semester: ResolveSemester(r),
		norm:     coursecode.Normalize(r.Code),
	}
}
