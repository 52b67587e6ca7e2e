package analysis

import (
	"strings"

	"github.com/dlclark/regexp2"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/coursecode"
	"gradcheck/backend/pkg/term"
)

// 교양필수 名称末尾的 "(n)" 表示同组的不同开课，分组时去掉
var groupSuffix = regexp2.MustCompile(`^(.*?)(?:\(\s*\d+\s*\))?$`, regexp2.None)

// GroupKey 교양필수 分组名
func GroupKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	m, err := groupSuffix.FindStringMatch(name)
	if err != nil || m == nil {
		return name
	}
	return strings.TrimSpace(m.GroupByNumber(1).String())
}

type generalGroup struct {
	Name  string
	Items []model.CatalogItem
	Codes coursecode.Set
}

// generalGroups 按首次出现顺序分组；缺代码或缺名称的条目不参与
func (a *Analysis) generalGroups() []generalGroup {
	var groups []generalGroup
	pos := make(map[string]int)
	for _, item := range a.Requirement.GeneralRequiredCourses {
		code := coursecode.Normalize(item.Code)
		if code == "" || strings.TrimSpace(item.Name) == "" {
			continue
		}
		key := GroupKey(item.Name)
		i, ok := pos[key]
		if !ok {
			i = len(groups)
			pos[key] = i
			groups = append(groups, generalGroup{Name: key, Codes: make(coursecode.Set)})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Codes[code] = struct{}{}
	}
	return groups
}

func (g generalGroup) hit(taken coursecode.Set) bool {
	for code := range g.Codes {
		if _, ok := taken[code]; ok {
			return true
		}
	}
	return false
}

// GeneralStatus 교양필수 修读情况
type GeneralStatus struct {
	Completed     []CourseRef `json:"completed"`
	Satisfied     bool        `json:"satisfied"`
	MissingGroups []string    `json:"missing_groups"`
}

// GeneralCoursesStatus 每组至少修读一门即视为该组完成
func (a *Analysis) GeneralCoursesStatus() GeneralStatus {
	st := GeneralStatus{Completed: []CourseRef{}, MissingGroups: []string{}}
	for _, g := range a.generalGroups() {
		if !g.hit(a.Taken) {
			st.MissingGroups = append(st.MissingGroups, g.Name)
			continue
		}
		seen := make(coursecode.Set)
		for _, item := range g.Items {
			code := coursecode.Normalize(item.Code)
			if _, ok := a.Taken[code]; !ok {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			st.Completed = append(st.Completed, CourseRef{Code: code, Name: item.Name})
		}
	}
	st.Satisfied = len(st.MissingGroups) == 0
	return st
}

// MajorStatus 已修的전공필수 / 전공선택
type MajorStatus struct {
	Required []CourseRef `json:"required"`
	Elective []CourseRef `json:"elective"`
}

// MajorCoursesStatus 已修专业课程
func (a *Analysis) MajorCoursesStatus() MajorStatus {
	return MajorStatus{
		Required: a.completedFrom(a.Requirement.MajorRequiredCourses),
		Elective: a.completedFrom(a.Requirement.MajorElectiveCourses),
	}
}

func (a *Analysis) completedFrom(items []model.CatalogItem) []CourseRef {
	out := []CourseRef{}
	for _, item := range items {
		code := coursecode.Normalize(item.Code)
		if code == "" {
			continue
		}
		if _, ok := a.Taken[code]; ok {
			out = append(out, CourseRef{Code: item.Code, Name: item.Name})
		}
	}
	return out
}

// CreditStatistics 完成率
type CreditStatistics struct {
	MajorRate   float64 `json:"major_rate"`
	GeneralRate float64 `json:"general_rate"`
}

// Statistics major_rate = 전공 学分 / 要求；general_rate = 已完成 교양필수 组 / 组数
func (a *Analysis) Statistics() CreditStatistics {
	var st CreditStatistics
	if a.Result.MajorRequired > 0 {
		st.MajorRate = float64(a.Result.MajorCompleted) / float64(a.Result.MajorRequired)
	}
	groups := a.generalGroups()
	if len(groups) > 0 {
		done := 0
		for _, g := range groups {
			if g.hit(a.Taken) {
				done++
			}
		}
		st.GeneralRate = float64(done) / float64(len(groups))
	}
	return st
}

// CreditLine 单个类别的学分进度
type CreditLine struct {
	Category  string `json:"category"`
	Completed int    `json:"completed"`
	Required  int    `json:"required"`
	Remaining int    `json:"remaining"`
	Satisfied bool   `json:"satisfied"`
}

// CreditSummary 按报表顺序列出各类别学分进度；드볼 的满足判定沿用特例规则
func (a *Analysis) CreditSummary() []CreditLine {
	r := a.Result
	line := func(label string, completed, required int) CreditLine {
		remaining := required - completed
		if remaining < 0 {
			remaining = 0
		}
		return CreditLine{
			Category:  label,
			Completed: completed,
			Required:  required,
			Remaining: remaining,
			Satisfied: completed >= required,
		}
	}
	breadth := line("드볼", r.BreadthCompleted, r.BreadthRequired)
	breadth.Satisfied = a.Breadth.CreditSatisfied
	if breadth.Satisfied {
		breadth.Remaining = 0
	}
	return []CreditLine{
		line("총 학점", r.TotalCompleted, r.TotalRequired),
		line("전공", r.MajorCompleted, r.MajorRequired),
		line("교양", r.GeneralCompleted, r.GeneralRequired),
		breadth,
		line("SW/데이터활용", r.SoftwareCompleted, r.SoftwareRequired),
		line("MSC", r.MSCCompleted, r.MSCRequired),
		line("특성화교양", r.SpecializedGeneralCompleted, r.SpecializedGeneralRequired),
	}
}

// BreadthView 드볼 判定详情
func (a *Analysis) BreadthView() BreadthStatus { return a.Breadth }

// RoadmapItem 必修课路线图条目
type RoadmapItem struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	PlannedSemester string `json:"planned_semester"`
	Completed       bool   `json:"completed"`
	TakenSemester   string `json:"taken_semester,omitempty"`
}

// Roadmap 전공필수 与 교양필수（按组）的计划学期与实际修读学期
type Roadmap struct {
	Major   []RoadmapItem `json:"major_required_roadmap"`
	General []RoadmapItem `json:"general_required_roadmap"`
}

// RequiredRoadmap 必修课路线图
func (a *Analysis) RequiredRoadmap() Roadmap {
	takenIn := make(map[string]string, len(a.Courses))
	for _, c := range a.Courses {
		if c.norm != "" {
			takenIn[c.norm] = c.Semester
		}
	}

	rm := Roadmap{Major: []RoadmapItem{}, General: []RoadmapItem{}}
	for _, item := range a.Requirement.MajorRequiredCourses {
		sem, ok := takenIn[coursecode.Normalize(item.Code)]
		rm.Major = append(rm.Major, RoadmapItem{
			Code:            item.Code,
			Name:            item.Name,
			PlannedSemester: item.Semester,
			Completed:       ok,
			TakenSemester:   sem,
		})
	}

	for _, g := range a.generalGroups() {
		rep := g.Items[0]
		var sem string
		hit := false
		for _, item := range g.Items {
			if s, ok := takenIn[coursecode.Normalize(item.Code)]; ok {
				rep, sem, hit = item, s, true
				break
			}
		}
		rm.General = append(rm.General, RoadmapItem{
			Code:            rep.Code,
			Name:            g.Name,
			PlannedSemester: rep.Semester,
			Completed:       hit,
			TakenSemester:   sem,
		})
	}
	return rm
}

// MissingCourse 带学期的未修课程
type MissingCourse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Semester string `json:"semester"`
}

// MissingRequired 未修必修汇总
type MissingRequired struct {
	Major   []MissingCourse `json:"major_required_missing"`
	General []string        `json:"general_required_missing"`
}

// MissingRequiredCourses 未修전공필수（扁平）与未完成的교양필수 组
func (a *Analysis) MissingRequiredCourses() MissingRequired {
	return MissingRequired{
		Major:   a.AllMissingRequired(),
		General: a.GeneralCoursesStatus().MissingGroups,
	}
}

// ---- 按学期的视图 ----

// Semesters 实际修读过的学期，升序，不含 "기타"
func (a *Analysis) Semesters() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, c := range a.Courses {
		if c.Semester == term.Other {
			continue
		}
		if _, ok := seen[c.Semester]; ok {
			continue
		}
		seen[c.Semester] = struct{}{}
		out = append(out, c.Semester)
	}
	term.Sort(out)
	return out
}

// filterAliases 课程过滤参数别名（英文 / 韩文）
var filterAliases = map[string]string{
	"drbol": "breadth", "드볼": "breadth",
	"major": "major", "전공": "major",
	"majormust": "major_required", "전공필수": "major_required",
	"majorselect": "major_elective", "전공선택": "major_elective",
	"general": "general", "교양": "general",
	"generalmust": "general_required", "교양필수": "general_required",
	"specialgeneral": "specialized_general", "특성화교양": "specialized_general",
}

// FilterCodes 解析逗号分隔的过滤参数，返回匹配的代码集合。
// 未识别的别名被忽略。
func (a *Analysis) FilterCodes(filter string) coursecode.Set {
	idx := a.Index
	wanted := make(coursecode.Set)
	for _, token := range strings.Split(filter, ",") {
		key, ok := filterAliases[strings.ToLower(strings.TrimSpace(token))]
		if !ok {
			continue
		}
		var set coursecode.Set
		switch key {
		case "breadth":
			set = idx.BreadthAll
		case "major":
			set = idx.MajorCodes()
		case "general":
			set = idx.GeneralCodes()
		default:
			set = idx.CategoryCodes[Category(key)]
		}
		for code := range set {
			wanted[code] = struct{}{}
		}
	}
	return wanted
}

// SemesterCourses 某学期的课程
type SemesterCourses struct {
	Semester string   `json:"semester"`
	Courses  []Course `json:"courses"`
}

// CoursesBySemester 按学期分组的有效课程，学期升序。
// filter 为空或不匹配任何代码时返回全部课程。
func (a *Analysis) CoursesBySemester(filter string) []SemesterCourses {
	courses := a.Courses
	if strings.TrimSpace(filter) != "" {
		if wanted := a.FilterCodes(filter); len(wanted) > 0 {
			courses = make([]Course, 0, len(a.Courses))
			for _, c := range a.Courses {
				if _, ok := wanted[c.norm]; ok && c.norm != "" {
					courses = append(courses, c)
				}
			}
		}
	}

	bySem := make(map[string][]Course)
	var order []string
	for _, c := range courses {
		if _, ok := bySem[c.Semester]; !ok {
			order = append(order, c.Semester)
		}
		bySem[c.Semester] = append(bySem[c.Semester], c)
	}
	term.Sort(order)

	out := make([]SemesterCourses, 0, len(order))
	for _, sem := range order {
		out = append(out, SemesterCourses{Semester: sem, Courses: bySem[sem]})
	}
	return out
}

// SemesterDetail 单个学期的课程明细
type SemesterDetail struct {
	Semester string   `json:"semester"`
	Count    int      `json:"count"`
	Courses  []Course `json:"courses"`
}

// Semester 单个学期的课程明细
func (a *Analysis) Semester(semester string) SemesterDetail {
	d := SemesterDetail{Semester: semester, Courses: []Course{}}
	for _, c := range a.Courses {
		if c.Semester == semester {
			d.Courses = append(d.Courses, c)
		}
	}
	d.Count = len(d.Courses)
	return d
}

// SemesterMissingRequired 计划在该学期的未修전공필수
func (a *Analysis) SemesterMissingRequired(semester string) []CourseRef {
	if refs := a.Result.MissingMajorCourses[semester]; refs != nil {
		return refs
	}
	return []CourseRef{}
}

// AllMissingRequired 全部未修전공필수，按计划学期升序
func (a *Analysis) AllMissingRequired() []MissingCourse {
	sems := make([]string, 0, len(a.Result.MissingMajorCourses))
	for sem := range a.Result.MissingMajorCourses {
		sems = append(sems, sem)
	}
	term.Sort(sems)

	out := []MissingCourse{}
	for _, sem := range sems {
		for _, ref := range a.Result.MissingMajorCourses[sem] {
			out = append(out, MissingCourse{Code: ref.Code, Name: ref.Name, Semester: sem})
		}
	}
	return out
}

// SemesterMissing 某计划学期的未修课程
type SemesterMissing struct {
	Semester string      `json:"semester"`
	Missing  []CourseRef `json:"missing"`
}

// MissingTimeline 以所有전공필수 计划学期为键的未修时间线（含没有缺失的学期）
func (a *Analysis) MissingTimeline() []SemesterMissing {
	planned := make(map[string]struct{})
	for _, item := range a.Requirement.MajorRequiredCourses {
		sem := strings.TrimSpace(item.Semester)
		if sem == "" {
			sem = term.Other
		}
		planned[sem] = struct{}{}
	}
	sems := make([]string, 0, len(planned))
	for sem := range planned {
		sems = append(sems, sem)
	}
	term.Sort(sems)

	out := make([]SemesterMissing, 0, len(sems))
	for _, sem := range sems {
		out = append(out, SemesterMissing{Semester: sem, Missing: a.SemesterMissingRequired(sem)})
	}
	return out
}
