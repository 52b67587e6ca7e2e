package ocr

import (
	"strings"

	"github.com/dlclark/regexp2"

	"gradcheck/backend/pkg/coursecode"
)

// 代码列中常见的字母/数字混淆
var confusion = strings.NewReplacer("O", "0", "I", "1", "L", "1", "G", "6")

var (
	digitRun = regexp2.MustCompile(`[0-9]+`, regexp2.None)
	// 整行兜底：任意 6 位数字，更长的数字串取前 6 位
	sixDigits = regexp2.MustCompile(`[0-9]{6}`, regexp2.None)
)

// correctCode 对代码列文本做混淆纠正，接受恰好 6 位的数字串
func correctCode(s string) (string, bool) {
	s = confusion.Replace(strings.ToUpper(stripSpace(s)))
	m, _ := digitRun.FindStringMatch(s)
	for m != nil {
		if coursecode.IsValid(m.String()) {
			return m.String(), true
		}
		m, _ = digitRun.FindNextMatch(m)
	}
	return "", false
}

// codeFromColumn 先逐个文本块尝试，再尝试列内文本拼接（代码被拆成多块时）
func codeFromColumn(col row) (string, bool) {
	for _, t := range col {
		if code, ok := correctCode(t.text); ok {
			return code, true
		}
	}
	if len(col) > 1 {
		return correctCode(col.text(""))
	}
	return "", false
}

// codeFromText 在整行文本中查找第一个 6 位数字串，不做混淆纠正
func codeFromText(s string) (string, bool) {
	m, err := sixDigits.FindStringMatch(s)
	if err != nil || m == nil {
		return "", false
	}
	return m.String(), true
}
