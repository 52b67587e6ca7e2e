package service

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gradcheck/backend/internal/analysis"
	"gradcheck/backend/internal/model"
)

// ErrImportFormat 毕业要求表格无法解析
var ErrImportFormat = errors.New("毕业要求表格格式错误")

// 导入表格的工作表名
const (
	SheetThresholds = "요건"
	SheetCourses    = "과목"
)

// BreadthCategoryLabel 과목 表中 드볼 课程的 구분 值
const BreadthCategoryLabel = "드볼"

// thresholdKeys 요건 表 A 列可用的键（韩文标签或字段名）
var thresholdKeys = map[string]func(r *model.GraduationRequirement, v int){
	"총학점":                          func(r *model.GraduationRequirement, v int) { r.TotalRequired = v },
	"total_required":               func(r *model.GraduationRequirement, v int) { r.TotalRequired = v },
	"전공":                           func(r *model.GraduationRequirement, v int) { r.MajorRequired = v },
	"major_required":               func(r *model.GraduationRequirement, v int) { r.MajorRequired = v },
	"교양":                           func(r *model.GraduationRequirement, v int) { r.GeneralRequired = v },
	"general_required":             func(r *model.GraduationRequirement, v int) { r.GeneralRequired = v },
	"드볼":                           func(r *model.GraduationRequirement, v int) { r.BreadthRequired = v },
	"breadth_required":             func(r *model.GraduationRequirement, v int) { r.BreadthRequired = v },
	"sw/데이터활용":                     func(r *model.GraduationRequirement, v int) { r.SoftwareRequired = v },
	"software_required":            func(r *model.GraduationRequirement, v int) { r.SoftwareRequired = v },
	"msc":                          func(r *model.GraduationRequirement, v int) { r.MSCRequired = v },
	"msc_required":                 func(r *model.GraduationRequirement, v int) { r.MSCRequired = v },
	"특성화교양":                        func(r *model.GraduationRequirement, v int) { r.SpecializedGeneralRequired = v },
	"specialized_general_required": func(r *model.GraduationRequirement, v int) { r.SpecializedGeneralRequired = v },
}

// areaNameKeys 요건 表中显式 드볼 领域列表的键
var areaNameKeys = map[string]bool{"드볼영역": true, "breadth_area_names": true}

// ParseRequirementWorkbook 解析毕业要求 xlsx：
//
//	요건 表：A 列键、B 列值（学分门槛与 드볼영역 列表）
//	과목 表：首行表头，列为 구분 | 영역 | 학수번호 | 과목명 | 학점 | 학기
//
// 구분 取值为各类别展示名（전공필수 …）或 드볼；学号为空的行跳过。
func ParseRequirementWorkbook(major string, r io.Reader) (*model.GraduationRequirement, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	defer f.Close()

	req := &model.GraduationRequirement{
		Major:                     major,
		MajorRequiredCourses:      model.CatalogItems{},
		MajorElectiveCourses:      model.CatalogItems{},
		GeneralRequiredCourses:    model.CatalogItems{},
		GeneralElectiveCourses:    model.CatalogItems{},
		SpecializedGeneralCourses: model.CatalogItems{},
		SoftwareCourses:           model.CatalogItems{},
		MSCCourses:                model.CatalogItems{},
		BreadthCourses:            model.BreadthAreas{},
	}

	if err := parseThresholdSheet(f, req); err != nil {
		return nil, err
	}
	if err := parseCourseSheet(f, req); err != nil {
		return nil, err
	}
	return req, nil
}

func parseThresholdSheet(f *excelize.File, req *model.GraduationRequirement) error {
	rows, err := f.GetRows(SheetThresholds)
	if err != nil {
		return fmt.Errorf("%w: 缺少工作表 %s", ErrImportFormat, SheetThresholds)
	}
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(row[0]), " ", ""))
		value := strings.TrimSpace(row[1])
		if key == "" {
			continue
		}
		if areaNameKeys[key] {
			req.BreadthAreaNames = value
			continue
		}
		set, ok := thresholdKeys[key]
		if !ok {
			continue
		}
		n, err := parseCellInt(value)
		if err != nil {
			return fmt.Errorf("%w: %s 第 %d 行学分无效: %q", ErrImportFormat, SheetThresholds, i+1, value)
		}
		set(req, n)
	}
	return nil
}

func parseCourseSheet(f *excelize.File, req *model.GraduationRequirement) error {
	rows, err := f.GetRows(SheetCourses)
	if err != nil {
		return fmt.Errorf("%w: 缺少工作表 %s", ErrImportFormat, SheetCourses)
	}

	categories := make(map[string]analysis.Category, len(analysis.Categories))
	for _, c := range analysis.Categories {
		categories[c.Label()] = c
		categories[string(c)] = c
	}
	areaIndex := make(map[string]int)

	for i, row := range rows {
		if i == 0 {
			continue // 表头
		}
		col := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}
		kind, area, code := col(0), col(1), col(2)
		if kind == "" || code == "" {
			continue
		}
		credit, err := parseCellInt(col(4))
		if err != nil {
			return fmt.Errorf("%w: %s 第 %d 行学分无效: %q", ErrImportFormat, SheetCourses, i+1, col(4))
		}
		item := model.CatalogItem{Code: code, Name: col(3), Credit: credit, Semester: col(5)}

		if kind == BreadthCategoryLabel {
			if area == "" {
				return fmt.Errorf("%w: %s 第 %d 行缺少 드볼 领域", ErrImportFormat, SheetCourses, i+1)
			}
			pos, ok := areaIndex[area]
			if !ok {
				pos = len(req.BreadthCourses)
				areaIndex[area] = pos
				req.BreadthCourses = append(req.BreadthCourses, model.BreadthArea{Area: area, Courses: []model.CatalogItem{}})
			}
			req.BreadthCourses[pos].Courses = append(req.BreadthCourses[pos].Courses, item)
			continue
		}

		c, ok := categories[kind]
		if !ok {
			return fmt.Errorf("%w: %s 第 %d 行未知类别 %q", ErrImportFormat, SheetCourses, i+1, kind)
		}
		appendCatalogItem(req, c, item)
	}
	return nil
}

func appendCatalogItem(req *model.GraduationRequirement, c analysis.Category, item model.CatalogItem) {
	switch c {
	case analysis.CategoryMajorRequired:
		req.MajorRequiredCourses = append(req.MajorRequiredCourses, item)
	case analysis.CategoryMajorElective:
		req.MajorElectiveCourses = append(req.MajorElectiveCourses, item)
	case analysis.CategoryGeneralRequired:
		req.GeneralRequiredCourses = append(req.GeneralRequiredCourses, item)
	case analysis.CategoryGeneralElective:
		req.GeneralElectiveCourses = append(req.GeneralElectiveCourses, item)
	case analysis.CategorySpecializedGeneral:
		req.SpecializedGeneralCourses = append(req.SpecializedGeneralCourses, item)
	case analysis.CategorySoftware:
		req.SoftwareCourses = append(req.SoftwareCourses, item)
	case analysis.CategoryMSC:
		req.MSCCourses = append(req.MSCCourses, item)
	}
}

// parseCellInt 空单元格为 0；"3.0" 之类的数值按四舍五入取整
func parseCellInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}
