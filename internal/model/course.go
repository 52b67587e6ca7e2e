package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gradcheck/backend/pkg/term"
)

// ── 成绩单课程记录 ──

// CourseRecord 成绩单中的一条课程记录（OCR 重建结果，写入后不可变）
//
// Grade 为 "F" 或 Retake 为 true 的记录不计入任何学分与已修集合。
type CourseRecord struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Credit   int    `json:"credit,omitempty"`
	Grade    string `json:"grade"`
	Retake   bool   `json:"retake"`
	Semester string `json:"semester"`
}

// Countable 是否计入学分（非 F、非重修）。
// OCR 对单独的字母会补 "+" 后缀，"F+"/"F0" 同样视为 F。
func (c CourseRecord) Countable() bool {
	return !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(c.Grade)), "F") && !c.Retake
}

// UnmarshalJSON 在入口处统一字段形态：code/credit 可为字符串或数字；
// 旧数据中的 term 字段转换为规范 semester。
func (c *CourseRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		Code     json.RawMessage `json:"code"`
		Name     string          `json:"name"`
		Credit   json.RawMessage `json:"credit"`
		Grade    string          `json:"grade"`
		Retake   json.RawMessage `json:"retake"`
		Semester string          `json:"semester"`
		Term     string          `json:"term"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	code, err := flexString(raw.Code)
	if err != nil {
		return fmt.Errorf("course code: %w", err)
	}
	*c = CourseRecord{
		Code:     code,
		Name:     strings.TrimSpace(raw.Name),
		Credit:   flexInt(raw.Credit),
		Grade:    strings.TrimSpace(raw.Grade),
		Retake:   flexBool(raw.Retake),
		Semester: strings.TrimSpace(raw.Semester),
	}
	if c.Semester == "" {
		c.Semester = term.Parse(raw.Term)
	}
	return nil
}

// CourseRecords 对应 transcripts.parsed_data（JSONB）
type CourseRecords []CourseRecord

// Scan 实现 sql.Scanner
func (r *CourseRecords) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	var out []CourseRecord
	if err := scanJSON(src, &out, "CourseRecords"); err != nil {
		return err
	}
	*r = out
	return nil
}

// Value 实现 driver.Valuer
func (r CourseRecords) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal([]CourseRecord(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ── 毕业要求目录项 ──

// CatalogItem 毕业要求目录中的课程项
type CatalogItem struct {
	Code     string `json:"code"                toml:"code"`
	Name     string `json:"name"                toml:"name"`
	Credit   int    `json:"credit,omitempty"    toml:"credit"`
	Semester string `json:"semester,omitempty"  toml:"semester"`
}

// UnmarshalJSON code/credit 兼容字符串与数字
func (c *CatalogItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		Code     json.RawMessage `json:"code"`
		Name     string          `json:"name"`
		Credit   json.RawMessage `json:"credit"`
		Semester string          `json:"semester"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	code, err := flexString(raw.Code)
	if err != nil {
		return fmt.Errorf("catalog code: %w", err)
	}
	*c = CatalogItem{
		Code:     code,
		Name:     strings.TrimSpace(raw.Name),
		Credit:   flexInt(raw.Credit),
		Semester: strings.TrimSpace(raw.Semester),
	}
	return nil
}

// CatalogItems 对应 graduation_requirements 中各类别课程列表（JSONB）
type CatalogItems []CatalogItem

// Scan 实现 sql.Scanner
func (c *CatalogItems) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	var out []CatalogItem
	if err := scanJSON(src, &out, "CatalogItems"); err != nil {
		return err
	}
	*c = out
	return nil
}

// Value 实现 driver.Valuer
func (c CatalogItems) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]CatalogItem(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BreadthArea 드볼（分布必修）的一个领域及其课程
type BreadthArea struct {
	Area    string        `json:"area"    toml:"area"`
	Courses []CatalogItem `json:"courses" toml:"courses"`
}

// BreadthAreas 有序的领域列表（JSONB）
type BreadthAreas []BreadthArea

// UnmarshalJSON 同时接受有序数组与 {"领域名": [...]} 对象形式；
// 对象形式按键在文档中出现的顺序保存。
func (a *BreadthAreas) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []BreadthArea
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*a = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil { // '{'
		return err
	}
	var out BreadthAreas
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("breadth area key: unexpected token %v", tok)
		}
		var items []CatalogItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("breadth area %q: %w", name, err)
		}
		out = append(out, BreadthArea{Area: name, Courses: items})
	}
	*a = out
	return nil
}

// Scan 实现 sql.Scanner
func (a *BreadthAreas) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var out BreadthAreas
	if err := scanJSON(src, &out, "BreadthAreas"); err != nil {
		return err
	}
	*a = out
	return nil
}

// Value 实现 driver.Valuer
func (a BreadthAreas) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]BreadthArea(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ── 入口归一化辅助 ──

func flexString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// flexInt 无法解析时返回 0（视为缺失）
func flexInt(raw json.RawMessage) int {
	s, err := flexString(raw)
	if err != nil || s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func flexBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("true")) {
		return true
	}
	if bytes.Equal(raw, []byte("false")) {
		return false
	}
	s, err := flexString(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(s) {
	case "true", "1", "y", "yes", "재수강":
		return true
	}
	return false
}
