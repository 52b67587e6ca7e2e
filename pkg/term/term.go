// Package term 解析成绩单中的学期描述（학년/학기），输出 "<学年>-<学期>" 规范标签。
package term

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Other 无法解析时的哨兵学期（기타 = 其他/未分类）
const Other = "기타"

var (
	// 学年：'학년' 后不能紧跟 '도'，避免把 "2023학년도" 的 "학년" 当成学年
	gradePattern = regexp2.MustCompile(`(\d)\s*학년(?!도)`, regexp2.None)
	termPattern  = regexp2.MustCompile(`(\d)\s*학기`, regexp2.None)

	// 页眉完整形式："2023학년도 1학년 2학기"
	headerPattern = regexp2.MustCompile(`(?<y>\d{4})\s*학년도.*?(?<g>\d)\s*학년(?!도).*?(?<s>\d)\s*학기`, regexp2.Singleline)
)

// Parse 将 "1학년 2학기" / "2023학년도 1학년 2학기" / "1학년 2023학년도 2학기" 转换为 "1-2"。
// 无法解析时返回 Other。
func Parse(s string) string {
	if strings.TrimSpace(s) == "" {
		return Other
	}
	g, err := gradePattern.FindStringMatch(s)
	if err != nil || g == nil {
		return Other
	}
	t, err := termPattern.FindStringMatch(s)
	if err != nil || t == nil {
		return Other
	}
	return Label(g.GroupByNumber(1).String(), t.GroupByNumber(1).String())
}

// FindHeader 在整页文本中查找 "<4位年度>학년도 ... <学年>학년 ... <学期>학기" 三元组。
// 找到时返回规范标签与 true。
func FindHeader(text string) (string, bool) {
	m, err := headerPattern.FindStringMatch(text)
	if err != nil || m == nil {
		return Other, false
	}
	return Label(m.GroupByName("g").String(), m.GroupByName("s").String()), true
}

// Label 组装规范学期标签
func Label(grade, semester string) string {
	return grade + "-" + semester
}

// Split 拆分规范标签；非 "<数字>-<数字>" 形式返回 ok=false
func Split(label string) (grade, semester int, ok bool) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	g, err1 := strconv.Atoi(parts[0])
	s, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return g, s, true
}

// Less 学期排序：按 (学年, 学期) 升序，无法解析的排在最后
func Less(a, b string) bool {
	ga, sa, okA := Split(a)
	gb, sb, okB := Split(b)
	switch {
	case okA && okB:
		if ga != gb {
			return ga < gb
		}
		return sa < sb
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

// Sort 原地排序学期标签
func Sort(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool { return Less(labels[i], labels[j]) })
}
