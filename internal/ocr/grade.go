package ocr

import (
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// NFKC 之后仍需手动归一的字形
var gradeGlyphs = strings.NewReplacer(
	"十", "+", "†", "+", "ᐩ", "+", "﹢", "+", "＋", "+", "T", "+",
	"O", "0", "〇", "0", "○", "0", "◯", "0",
)

var (
	fullGrade   = regexp2.MustCompile(`[ABCDF][+0]`, regexp2.None)
	letterGrade = regexp2.MustCompile(`[ABCDF]`, regexp2.None)
)

func foldGrade(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToUpper(stripSpace(s))
	return gradeGlyphs.Replace(s)
}

// extractGrade 依次尝试 "字母+后缀"、"P"、单独字母（后缀缺省为 +）
func extractGrade(texts []string) (string, bool) {
	if len(texts) == 0 {
		return "", false
	}
	s := foldGrade(strings.Join(texts, ""))
	if m, _ := fullGrade.FindStringMatch(s); m != nil {
		return m.String(), true
	}
	if strings.Contains(s, "P") {
		return "P", true
	}
	if m, _ := letterGrade.FindStringMatch(s); m != nil {
		return m.String() + "+", true
	}
	return "", false
}

// isRetake 行文本包含 "재수강" 或 "Y"
func isRetake(texts []string) bool {
	s := stripSpace(strings.Join(texts, ""))
	return strings.Contains(s, "재수강") || strings.Contains(s, "Y")
}
