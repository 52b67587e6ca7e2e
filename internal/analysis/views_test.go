package analysis

import (
	"testing"

	"gradcheck/backend/internal/model"
)

func newViewRequirement() *model.GraduationRequirement {
	req := newTestRequirement()
	req.GeneralRequiredCourses = model.CatalogItems{
		{Code: "200001", Name: "글쓰기(1)", Credit: 3, Semester: "1-1"},
		{Code: "200002", Name: "글쓰기(2)", Credit: 3, Semester: "1-2"},
		{Code: "200010", Name: "영어", Credit: 2, Semester: "1-1"},
		{Code: "", Name: "무효"},
	}
	req.SpecializedGeneralCourses = model.CatalogItems{{Code: "300001", Name: "창의설계", Credit: 2}}
	return req
}

func newViewAnalysis() *Analysis {
	courses := []model.CourseRecord{
		{Code: "100001", Credit: 3, Grade: "A0", Semester: "2-1"},
		{Code: "200002", Credit: 3, Grade: "B+", Semester: "1-2"},
		{Code: "300001", Credit: 2, Grade: "A+", Semester: "1-1"},
		{Code: areaCode(0), Credit: 3, Grade: "P", Semester: "10-1"},
		{Code: "900001", Name: "자유선택", Credit: 3, Grade: "B0"},
	}
	return New(courses, newViewRequirement(), DefaultPolicy())
}

func TestGroupKey(t *testing.T) {
	cases := map[string]string{
		"글쓰기(1)":      "글쓰기",
		" 글쓰기 ( 2 ) ": "글쓰기",
		"영어":          "영어",
		"영어(회화)":      "영어(회화)",
		"":            "",
	}
	for in, want := range cases {
		if got := GroupKey(in); got != want {
			t.Errorf("GroupKey(%q) = %q, 期望 %q", in, got, want)
		}
	}
}

func TestGeneralCoursesStatus(t *testing.T) {
	st := newViewAnalysis().GeneralCoursesStatus()

	if st.Satisfied {
		t.Error("영어 组未修，不应满足")
	}
	if len(st.MissingGroups) != 1 || st.MissingGroups[0] != "영어" {
		t.Errorf("期望缺失 [영어]，实际 %v", st.MissingGroups)
	}
	if len(st.Completed) != 1 || st.Completed[0].Code != "200002" {
		t.Errorf("期望完成 200002，实际 %v", st.Completed)
	}
}

func TestMajorCoursesStatus(t *testing.T) {
	st := newViewAnalysis().MajorCoursesStatus()
	if len(st.Required) != 1 || st.Required[0].Name != "자료구조" {
		t.Errorf("期望已修 자료구조，实际 %v", st.Required)
	}
	if st.Elective == nil || len(st.Elective) != 0 {
		t.Errorf("전공선택 应为空列表，实际 %v", st.Elective)
	}
}

func TestStatistics(t *testing.T) {
	st := newViewAnalysis().Statistics()
	if st.MajorRate != 3.0/60.0 {
		t.Errorf("major_rate 错误: %v", st.MajorRate)
	}
	if st.GeneralRate != 0.5 {
		t.Errorf("期望 general_rate=0.5，实际 %v", st.GeneralRate)
	}
}

func TestRequiredRoadmap(t *testing.T) {
	rm := newViewAnalysis().RequiredRoadmap()

	if len(rm.Major) != 2 {
		t.Fatalf("期望 2 条전공필수，实际 %d", len(rm.Major))
	}
	if !rm.Major[0].Completed || rm.Major[0].TakenSemester != "2-1" {
		t.Errorf("자료구조 应在 2-1 完成，实际 %+v", rm.Major[0])
	}
	if rm.Major[1].Completed || rm.Major[1].PlannedSemester != "2-2" {
		t.Errorf("알고리즘 应未完成且计划 2-2，实际 %+v", rm.Major[1])
	}

	if len(rm.General) != 2 {
		t.Fatalf("期望 2 个교양필수 组，实际 %d", len(rm.General))
	}
	g := rm.General[0]
	if g.Name != "글쓰기" || g.Code != "200002" || !g.Completed || g.TakenSemester != "1-2" {
		t.Errorf("글쓰기 组应以已修的 200002 为代表，实际 %+v", g)
	}
	if rm.General[1].Completed || rm.General[1].Code != "200010" {
		t.Errorf("영어 组应未完成，实际 %+v", rm.General[1])
	}
}

func TestSemesters(t *testing.T) {
	got := newViewAnalysis().Semesters()
	want := []string{"1-1", "1-2", "2-1", "10-1"}
	if len(got) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] 期望 %s，实际 %s", i, want[i], got[i])
		}
	}
}

func TestCoursesBySemester(t *testing.T) {
	a := newViewAnalysis()

	all := a.CoursesBySemester("")
	if len(all) != 5 || all[len(all)-1].Semester != "기타" {
		t.Errorf("기타 应排在最后，实际 %+v", all)
	}

	major := a.CoursesBySemester("전공")
	if len(major) != 1 || major[0].Semester != "2-1" || len(major[0].Courses) != 1 {
		t.Errorf("전공 过滤错误: %+v", major)
	}

	// 드볼 计入 교양
	general := a.CoursesBySemester("general")
	count := 0
	for _, g := range general {
		count += len(g.Courses)
	}
	if count != 3 {
		t.Errorf("期望 3 门교양课程，实际 %d", count)
	}

	combined := a.CoursesBySemester("DRBOL, specialgeneral")
	if len(combined) != 2 {
		t.Errorf("期望 2 个学期，实际 %+v", combined)
	}

	// 未知别名等同于不过滤
	if unknown := a.CoursesBySemester("nope"); len(unknown) != len(all) {
		t.Errorf("未知别名应返回全部，实际 %d 组", len(unknown))
	}
}

func TestSemesterDetail(t *testing.T) {
	d := newViewAnalysis().Semester("기타")
	if d.Count != 1 || d.Courses[0].Name != "자유선택" || d.Courses[0].Type != UncategorizedLabel {
		t.Errorf("기타 学期明细错误: %+v", d)
	}
	if empty := newViewAnalysis().Semester("4-2"); empty.Count != 0 || empty.Courses == nil {
		t.Errorf("无课程学期应返回空列表，实际 %+v", empty)
	}
}

func TestMissingViews(t *testing.T) {
	a := newViewAnalysis()

	if got := a.SemesterMissingRequired("2-2"); len(got) != 1 || got[0].Code != "100002" {
		t.Errorf("2-2 缺失错误: %v", got)
	}
	if got := a.SemesterMissingRequired("2-1"); got == nil || len(got) != 0 {
		t.Errorf("2-1 应为空列表，实际 %v", got)
	}

	flat := a.AllMissingRequired()
	if len(flat) != 1 || flat[0].Semester != "2-2" {
		t.Errorf("扁平缺失错误: %v", flat)
	}

	timeline := a.MissingTimeline()
	if len(timeline) != 2 || timeline[0].Semester != "2-1" || len(timeline[0].Missing) != 0 {
		t.Errorf("时间线应包含全部计划学期，实际 %+v", timeline)
	}

	missing := a.MissingRequiredCourses()
	if len(missing.General) != 1 || missing.General[0] != "영어" {
		t.Errorf("교양 缺失组错误: %v", missing.General)
	}
}

func TestCreditSummary(t *testing.T) {
	a := newViewAnalysis()
	lines := a.CreditSummary()

	if len(lines) != 7 {
		t.Fatalf("期望 7 个类别，实际 %d", len(lines))
	}
	if lines[0].Category != "총 학점" || lines[0].Completed != a.Result.TotalCompleted {
		t.Errorf("首行应为总学分，实际 %+v", lines[0])
	}
	for _, l := range lines {
		if l.Remaining < 0 {
			t.Errorf("%s 剩余学分不应为负: %d", l.Category, l.Remaining)
		}
		if l.Satisfied && l.Remaining != 0 {
			t.Errorf("%s 已满足时剩余应为 0，实际 %d", l.Category, l.Remaining)
		}
	}
	if lines[3].Category != "드볼" || lines[3].Satisfied != a.Breadth.CreditSatisfied {
		t.Errorf("드볼 行应沿用 CreditSatisfied，实际 %+v", lines[3])
	}
}
