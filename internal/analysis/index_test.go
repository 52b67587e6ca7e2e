package analysis

import (
	"testing"

	"gradcheck/backend/internal/model"
)

func TestBuildIndex_FirstCategoryWins(t *testing.T) {
	req := &model.GraduationRequirement{
		MajorElectiveCourses: model.CatalogItems{{Code: "12345", Name: "데이터베이스", Credit: 3}},
		BreadthCourses: model.BreadthAreas{
			{Area: "사회", Courses: []model.CatalogItem{
				{Code: "012345", Name: "데이터와 사회", Credit: 2},
				{Code: "300001", Name: "사회학개론", Credit: 3},
			}},
		},
	}
	idx := BuildIndex(req)

	if got := idx.CodeToCredit["012345"]; got != 3 {
		t.Errorf("先出现的 전공선택 学分应保留，期望 3，实际 %d", got)
	}
	if got := idx.CodeToCategory["012345"]; got != "전공선택" {
		t.Errorf("期望类别 전공선택，实际 %q", got)
	}
	if item, ok := idx.CatalogItem("12345"); !ok || item.Name != "데이터베이스" {
		t.Errorf("目录项应取首次出现，实际 %+v", item)
	}
	if !idx.BreadthAreaCodes["사회"].Has("012345") || !idx.BreadthAll.Has("012345") {
		t.Error("重复代码仍应属于 드볼 领域集合")
	}
	if !idx.MajorCodes().Has("012345") {
		t.Error("重复代码应属于 전공 集合")
	}
	if got := idx.CodeToCategory["300001"]; got != "드볼(사회)" {
		t.Errorf("드볼 课程类别应为 드볼(사회)，实际 %q", got)
	}
}

func TestBuildIndex_SkipsCodelessItems(t *testing.T) {
	req := &model.GraduationRequirement{
		MajorRequiredCourses: model.CatalogItems{{Code: "", Name: "미정", Credit: 3}, {Code: "ABC", Credit: 3}},
		BreadthAreaNames:     "인간, 사회 ,,",
	}
	idx := BuildIndex(req)

	if len(idx.CodeToCredit) != 0 || len(idx.CategoryCodes[CategoryMajorRequired]) != 0 {
		t.Errorf("无代码目录项应被跳过: %+v", idx.CodeToCredit)
	}
	if len(idx.Areas) != 2 || idx.Areas[0] != "인간" || idx.Areas[1] != "사회" {
		t.Errorf("显式领域列表应去空白，实际 %v", idx.Areas)
	}
	if _, ok := idx.BreadthAreaCodes["사회"]; !ok {
		t.Error("无课程的领域也应有空集合")
	}
}
