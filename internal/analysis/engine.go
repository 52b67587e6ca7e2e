package analysis

import (
	"fmt"
	"strings"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/coursecode"
	"gradcheck/backend/pkg/term"
)

// 毕业结论
const (
	StatusComplete = "complete"
	StatusPending  = "pending"
)

// MessageSatisfied 全部要求满足时的固定消息
const MessageSatisfied = "졸업 요건 충족"

// MissingMajorMessage 存在未修전공필수时的消息片段
const MissingMajorMessage = "전공 필수 미이수 존재"

// CourseRef 课程引用（代码 + 名称）
type CourseRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Result 分析结果；字段名是报表层的兼容契约
type Result struct {
	TotalCompleted              int `json:"total_completed"`
	TotalRequired               int `json:"total_required"`
	MajorCompleted              int `json:"major_completed"`
	MajorRequired               int `json:"major_required"`
	GeneralCompleted            int `json:"general_completed"`
	GeneralRequired             int `json:"general_required"`
	BreadthCompleted            int `json:"breadth_completed"`
	BreadthRequired             int `json:"breadth_required"`
	SoftwareCompleted           int `json:"software_completed"`
	SoftwareRequired            int `json:"software_required"`
	MSCCompleted                int `json:"msc_completed"`
	MSCRequired                 int `json:"msc_required"`
	SpecializedGeneralCompleted int `json:"specialized_general_completed"`
	SpecializedGeneralRequired  int `json:"specialized_general_required"`

	MissingMajorCourses map[string][]CourseRef `json:"missing_major_courses"`
	MissingBreadthAreas []string               `json:"missing_breadth_areas"`
	GraduationStatus    string                 `json:"graduation_status"`
	Message             string                 `json:"message"`

	// Deficiencies 未满足规则的消息片段（Message 由其拼接）
	Deficiencies []string `json:"-"`
}

// Complete 是否满足全部毕业要求
func (r *Result) Complete() bool { return r.GraduationStatus == StatusComplete }

// Analysis 一次分析的完整上下文：索引、解析后的课程与结果。
// 报表视图基于它做只读投影。
type Analysis struct {
	Requirement *model.GraduationRequirement
	Index       *Index
	Courses     []Course
	Taken       coursecode.Set
	Breadth     BreadthStatus
	Result      *Result
}

// Analyze 计算毕业要求分析结果。
// courses 必须已由调用方过滤掉 F 与重修记录（见 FilterCountable）。
func Analyze(courses []model.CourseRecord, req *model.GraduationRequirement, policy Policy) *Result {
	return New(courses, req, policy).Result
}

// New 构建分析上下文并执行全部计算
func New(records []model.CourseRecord, req *model.GraduationRequirement, policy Policy) *Analysis {
	idx := BuildIndex(req)

	a := &Analysis{
		Requirement: req,
		Index:       idx,
		Courses:     make([]Course, 0, len(records)),
		Taken:       make(coursecode.Set),
	}
	for _, r := range records {
		c := resolveCourse(r, idx)
		a.Courses = append(a.Courses, c)
		if c.norm != "" {
			a.Taken[c.norm] = struct{}{}
		}
	}

	res := &Result{
		TotalCompleted:              a.totalCredit(),
		TotalRequired:               req.TotalRequired,
		MajorCompleted:              a.sumCredit(idx.MajorCodes()),
		MajorRequired:               req.MajorRequired,
		GeneralCompleted:            a.sumCredit(idx.GeneralCodes()),
		GeneralRequired:             req.GeneralRequired,
		BreadthCompleted:            a.sumCredit(idx.BreadthAll),
		BreadthRequired:             req.BreadthRequired,
		SoftwareCompleted:           a.sumCredit(idx.CategoryCodes[CategorySoftware]),
		SoftwareRequired:            req.SoftwareRequired,
		MSCCompleted:                a.sumCredit(idx.CategoryCodes[CategoryMSC]),
		MSCRequired:                 req.MSCRequired,
		SpecializedGeneralCompleted: a.sumCredit(idx.CategoryCodes[CategorySpecializedGeneral]),
		SpecializedGeneralRequired:  req.SpecializedGeneralRequired,
		MissingMajorCourses:         a.missingMajorRequired(),
	}

	a.Breadth = evaluateBreadth(a.Courses, idx, res.BreadthCompleted, req.BreadthRequired, policy)
	res.MissingBreadthAreas = a.Breadth.MissingAreas

	res.Deficiencies = a.deficiencies(res)
	if len(res.Deficiencies) == 0 {
		res.GraduationStatus = StatusComplete
		res.Message = MessageSatisfied
	} else {
		res.GraduationStatus = StatusPending
		res.Message = strings.Join(res.Deficiencies, " / ")
	}

	a.Result = res
	return a
}

// totalCredit 全部有效课程学分之和（不区分类别）
func (a *Analysis) totalCredit() int {
	total := 0
	for _, c := range a.Courses {
		total += c.Credit
	}
	return total
}

// sumCredit 代码落在 codes 中的课程学分之和；每门课程只计一次
func (a *Analysis) sumCredit(codes coursecode.Set) int {
	total := 0
	for _, c := range a.Courses {
		if c.norm == "" {
			continue
		}
		if _, ok := codes[c.norm]; ok {
			total += c.Credit
		}
	}
	return total
}

// missingMajorRequired 未修전공필수，按目录声明的学期分组（缺省 "기타"）
func (a *Analysis) missingMajorRequired() map[string][]CourseRef {
	missing := make(map[string][]CourseRef)
	for _, item := range a.Requirement.MajorRequiredCourses {
		code := coursecode.Normalize(item.Code)
		if code == "" {
			continue
		}
		if _, ok := a.Taken[code]; ok {
			continue
		}
		sem := strings.TrimSpace(item.Semester)
		if sem == "" {
			sem = term.Other
		}
		missing[sem] = append(missing[sem], CourseRef{Code: item.Code, Name: item.Name})
	}
	return missing
}

func (a *Analysis) deficiencies(res *Result) []string {
	var out []string
	short := func(label string, completed, required int) {
		if completed < required {
			out = append(out, fmt.Sprintf("%s %d학점 부족", label, required-completed))
		}
	}

	short("총 학점", res.TotalCompleted, res.TotalRequired)
	short("전공", res.MajorCompleted, res.MajorRequired)
	short("교양", res.GeneralCompleted, res.GeneralRequired)
	if !a.Breadth.CreditSatisfied {
		out = append(out, fmt.Sprintf("드볼 %d학점 부족", a.Breadth.TotalCreditRequired-a.Breadth.TotalCreditCompleted))
	}
	if !a.Breadth.CoverageSatisfied {
		out = append(out, fmt.Sprintf("드볼 영역 %d개 부족", a.Breadth.AreasRequired-a.Breadth.AreasCovered))
	}
	short("SW/데이터활용", res.SoftwareCompleted, res.SoftwareRequired)
	short("MSC", res.MSCCompleted, res.MSCRequired)
	short("특성화교양", res.SpecializedGeneralCompleted, res.SpecializedGeneralRequired)
	if len(res.MissingMajorCourses) > 0 {
		out = append(out, MissingMajorMessage)
	}
	return out
}
