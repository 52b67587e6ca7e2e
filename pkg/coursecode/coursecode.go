// Package coursecode 提供课程代码（학수번호）的规范化。
//
// 规范化后的 6 位数字代码是成绩单记录与毕业要求目录之间唯一的关联键。
package coursecode

import "strings"

// Width 规范代码长度
const Width = 6

// Normalize 将任意形式的课程代码规范化为 6 位补零数字串。
// 去除所有非数字字符；剩余为空时返回 ""（视为“无代码”）。
// 超过 6 位的数字串原样返回，不截断。
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(Width)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) < Width {
		return strings.Repeat("0", Width-len(digits)) + digits
	}
	return digits
}

// Equal 两个代码规范化后相等且非空时视为同一门课程
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// IsValid 判断是否为恰好 6 位的数字代码
func IsValid(code string) bool {
	if len(code) != Width {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Set 规范代码集合
type Set map[string]struct{}

// Add 加入规范化后的代码，空代码被忽略。返回是否实际加入。
func (s Set) Add(raw string) bool {
	code := Normalize(raw)
	if code == "" {
		return false
	}
	s[code] = struct{}{}
	return true
}

// Has 判断集合是否包含该代码（入参会先规范化）
func (s Set) Has(raw string) bool {
	code := Normalize(raw)
	if code == "" {
		return false
	}
	_, ok := s[code]
	return ok
}

// Union 返回多个集合的并集（新集合）
func Union(sets ...Set) Set {
	out := make(Set)
	for _, s := range sets {
		for code := range s {
			out[code] = struct{}{}
		}
	}
	return out
}
