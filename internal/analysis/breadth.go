package analysis

// Policy 드볼 判定参数
type Policy struct {
	// MinAreas 需要覆盖的最少领域数（领域总数不足时取总数）
	MinAreas int
	// ExceptionCredit 例外：总学分恰为该值时……
	ExceptionCredit int
	// ExceptionAreaCredit ……且某个已覆盖领域学分恰为该值，视为学分满足
	ExceptionAreaCredit int
}

// DefaultPolicy 默认：覆盖 6 个领域；17 学分 + 某领域恰 2 学分的特例
func DefaultPolicy() Policy {
	return Policy{MinAreas: 6, ExceptionCredit: 17, ExceptionAreaCredit: 2}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MinAreas <= 0 {
		p.MinAreas = d.MinAreas
	}
	if p.ExceptionCredit <= 0 {
		p.ExceptionCredit = d.ExceptionCredit
	}
	if p.ExceptionAreaCredit <= 0 {
		p.ExceptionAreaCredit = d.ExceptionAreaCredit
	}
	return p
}

// AreaStat 单个领域的修读统计
type AreaStat struct {
	Area            string `json:"area"`
	Covered         bool   `json:"covered"`
	CoursesCount    int    `json:"courses_count"`
	CompletedCredit int    `json:"completed_credit"`
}

// BreadthStatus 드볼 判定结果
type BreadthStatus struct {
	Areas                []AreaStat `json:"areas"`
	AreasRequired        int        `json:"areas_required"`
	AreasCovered         int        `json:"areas_covered"`
	MissingAreas         []string   `json:"missing_areas"`
	TotalCreditCompleted int        `json:"total_credit_completed"`
	TotalCreditRequired  int        `json:"total_credit_required"`
	CoverageSatisfied    bool       `json:"coverage_satisfied"`
	CreditSatisfied      bool       `json:"credit_satisfied"`
	ExceptionApplied     bool       `json:"exception_applied"`
	Satisfied            bool       `json:"satisfied"`
}

// evaluateBreadth 覆盖 + 学分双重判定。
// totalCredit 为 드볼 课程学分总和（每门课只计一次）。
func evaluateBreadth(courses []Course, idx *Index, totalCredit, required int, policy Policy) BreadthStatus {
	policy = policy.withDefaults()

	st := BreadthStatus{
		Areas:                make([]AreaStat, 0, len(idx.Areas)),
		MissingAreas:         []string{},
		TotalCreditCompleted: totalCredit,
		TotalCreditRequired:  required,
	}

	st.AreasRequired = policy.MinAreas
	if len(idx.Areas) < st.AreasRequired {
		st.AreasRequired = len(idx.Areas)
	}

	for _, area := range idx.Areas {
		stat := AreaStat{Area: area}
		set := idx.BreadthAreaCodes[area]
		for _, c := range courses {
			if c.norm == "" {
				continue
			}
			if _, ok := set[c.norm]; ok {
				stat.CoursesCount++
				stat.CompletedCredit += c.Credit
			}
		}
		stat.Covered = stat.CoursesCount > 0
		if stat.Covered {
			st.AreasCovered++
		} else {
			st.MissingAreas = append(st.MissingAreas, area)
		}
		st.Areas = append(st.Areas, stat)
	}

	st.CoverageSatisfied = st.AreasCovered >= st.AreasRequired

	switch {
	case totalCredit >= required:
		st.CreditSatisfied = true
	case totalCredit == policy.ExceptionCredit:
		// 特例：某已覆盖领域恰好 2 学分（2 学分特别专题课）时接受 17 学分
		for _, a := range st.Areas {
			if a.Covered && a.CompletedCredit == policy.ExceptionAreaCredit {
				st.CreditSatisfied = true
				st.ExceptionApplied = true
				break
			}
		}
	}

	st.Satisfied = st.CoverageSatisfied && st.CreditSatisfied
	return st
}
