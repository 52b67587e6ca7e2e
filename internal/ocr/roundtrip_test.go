package ocr

import (
	"testing"

	"gradcheck/backend/internal/analysis"
	"gradcheck/backend/internal/model"
)

// 5 行成绩单：其中 1 行 F、1 行重修，过滤后 3 行计入
func TestRoundTrip_ReconstructThenAnalyze(t *testing.T) {
	items := page(
		dataRow(100, "100001", "자료구조", "3", "A+"),
		dataRow(140, "100002", "알고리즘", "3", "F"),
		append(dataRow(180, "200001", "글쓰기", "2", "B0"), cell("재수강", 560, 180)),
		dataRow(220, "700001", "철학의이해", "", "P"),
		dataRow(260, "900001", "", "1", "C0"),
	)

	records := Reconstruct(items, DefaultOptions())
	if len(records) != 5 {
		t.Fatalf("期望重建 5 行，实际 %d: %+v", len(records), records)
	}

	req := &model.GraduationRequirement{
		MajorRequiredCourses: model.CatalogItems{
			{Code: "100001", Name: "자료구조", Credit: 3, Semester: "1-2"},
			{Code: "100002", Name: "알고리즘", Credit: 3, Semester: "2-1"},
		},
		GeneralRequiredCourses: model.CatalogItems{{Code: "200001", Name: "글쓰기", Credit: 2}},
		BreadthCourses: model.BreadthAreas{
			{Area: "인간", Courses: []model.CatalogItem{{Code: "700001", Name: "철학의이해", Credit: 3}}},
		},
	}

	res := analysis.Analyze(analysis.FilterCountable(records), req, analysis.DefaultPolicy())

	// 100001(3) + 700001(目录回退 3) + 900001(1)
	if res.TotalCompleted != 7 {
		t.Errorf("期望 total=7，实际 %d", res.TotalCompleted)
	}
	if res.MajorCompleted != 3 {
		t.Errorf("期望 major=3，实际 %d", res.MajorCompleted)
	}
	if res.GeneralCompleted != 3 || res.BreadthCompleted != 3 {
		t.Errorf("期望 general=breadth=3，实际 %d/%d", res.GeneralCompleted, res.BreadthCompleted)
	}
	missing := res.MissingMajorCourses["2-1"]
	if len(missing) != 1 || missing[0].Code != "100002" {
		t.Errorf("F 课程应计为未修，实际 %v", res.MissingMajorCourses)
	}
}
