// Package analysis 实现毕业要求分析引擎：
// 由毕业要求目录构建索引，结合有效课程记录计算各类别学分、未修必修课、
// 드볼（分布必修）覆盖与学分判定，并给出最终结论。
//
// 引擎是纯函数：每次分析都从输入重新构建索引，不做缓存。
package analysis

import (
	"gradcheck/backend/internal/model"
	"gradcheck/backend/pkg/coursecode"
)

// Category 固定的要求类别
type Category string

const (
	CategoryMajorRequired      Category = "major_required"
	CategoryMajorElective      Category = "major_elective"
	CategoryGeneralRequired    Category = "general_required"
	CategoryGeneralElective    Category = "general_elective"
	CategorySpecializedGeneral Category = "specialized_general"
	CategorySoftware           Category = "software"
	CategoryMSC                Category = "msc"
)

// Categories 类别声明顺序，决定 code→credit / code→category 的先写优先
var Categories = []Category{
	CategoryMajorRequired,
	CategoryMajorElective,
	CategoryGeneralRequired,
	CategoryGeneralElective,
	CategorySpecializedGeneral,
	CategorySoftware,
	CategoryMSC,
}

var categoryLabels = map[Category]string{
	CategoryMajorRequired:      "전공필수",
	CategoryMajorElective:      "전공선택",
	CategoryGeneralRequired:    "교양필수",
	CategoryGeneralElective:    "교양선택",
	CategorySpecializedGeneral: "특성화교양",
	CategorySoftware:           "SW/데이터",
	CategoryMSC:                "MSC",
}

// Label 类别展示名
func (c Category) Label() string { return categoryLabels[c] }

// BreadthLabel 드볼 领域的展示名
func BreadthLabel(area string) string { return "드볼(" + area + ")" }

// UncategorizedLabel 不属于任何类别的课程
const UncategorizedLabel = "기타"

// CategoryItems 返回某类别的目录列表
func CategoryItems(req *model.GraduationRequirement, c Category) []model.CatalogItem {
	switch c {
	case CategoryMajorRequired:
		return req.MajorRequiredCourses
	case CategoryMajorElective:
		return req.MajorElectiveCourses
	case CategoryGeneralRequired:
		return req.GeneralRequiredCourses
	case CategoryGeneralElective:
		return req.GeneralElectiveCourses
	case CategorySpecializedGeneral:
		return req.SpecializedGeneralCourses
	case CategorySoftware:
		return req.SoftwareCourses
	case CategoryMSC:
		return req.MSCCourses
	}
	return nil
}

// Index 毕业要求查找结构
type Index struct {
	// CodeToCredit 每个代码首次出现时的学分（目录缺省学分为 0）
	CodeToCredit map[string]int
	// CodeToCategory 每个代码首次出现时的类别展示名
	CodeToCategory map[string]string
	// CategoryCodes 7 个固定类别的代码集合
	CategoryCodes map[Category]coursecode.Set
	// BreadthAreaCodes 每个 드볼 领域的代码集合
	BreadthAreaCodes map[string]coursecode.Set
	// BreadthAll 所有领域代码的并集
	BreadthAll coursecode.Set
	// Areas 参与覆盖判定的领域（有序）
	Areas []string

	catalog map[string]model.CatalogItem
}

// BuildIndex 由毕业要求构建索引。代码为空或无法解析的目录项被静默跳过。
func BuildIndex(req *model.GraduationRequirement) *Index {
	idx := &Index{
		CodeToCredit:     make(map[string]int),
		CodeToCategory:   make(map[string]string),
		CategoryCodes:    make(map[Category]coursecode.Set, len(Categories)),
		BreadthAreaCodes: make(map[string]coursecode.Set),
		BreadthAll:       make(coursecode.Set),
		catalog:          make(map[string]model.CatalogItem),
	}

	for _, c := range Categories {
		set := make(coursecode.Set)
		for _, item := range CategoryItems(req, c) {
			idx.add(item, c.Label(), set)
		}
		idx.CategoryCodes[c] = set
	}

	for _, area := range req.BreadthCourses {
		set, ok := idx.BreadthAreaCodes[area.Area]
		if !ok {
			set = make(coursecode.Set)
			idx.BreadthAreaCodes[area.Area] = set
		}
		for _, item := range area.Courses {
			idx.add(item, BreadthLabel(area.Area), set, idx.BreadthAll)
		}
	}

	idx.Areas = req.AreaNames()
	for _, area := range idx.Areas {
		if _, ok := idx.BreadthAreaCodes[area]; !ok {
			idx.BreadthAreaCodes[area] = make(coursecode.Set)
		}
	}

	return idx
}

func (idx *Index) add(item model.CatalogItem, label string, sets ...coursecode.Set) {
	code := coursecode.Normalize(item.Code)
	if code == "" {
		return
	}
	for _, s := range sets {
		s[code] = struct{}{}
	}
	if _, ok := idx.CodeToCredit[code]; !ok {
		idx.CodeToCredit[code] = item.Credit
		idx.CodeToCategory[code] = label
		idx.catalog[code] = item
	}
}

// CatalogItem 返回代码首次出现的目录项
func (idx *Index) CatalogItem(code string) (model.CatalogItem, bool) {
	item, ok := idx.catalog[coursecode.Normalize(code)]
	return item, ok
}

// Codes 返回多个类别代码集合的并集
func (idx *Index) Codes(cats ...Category) coursecode.Set {
	sets := make([]coursecode.Set, 0, len(cats))
	for _, c := range cats {
		sets = append(sets, idx.CategoryCodes[c])
	}
	return coursecode.Union(sets...)
}

// MajorCodes 전공 = 전공필수 ∪ 전공선택
func (idx *Index) MajorCodes() coursecode.Set {
	return idx.Codes(CategoryMajorRequired, CategoryMajorElective)
}

// GeneralCodes 교양 = 교양필수 ∪ 교양선택 ∪ 특성화교양 ∪ 드볼
// 드볼 学分同时计入교양总数。
func (idx *Index) GeneralCodes() coursecode.Set {
	return coursecode.Union(
		idx.Codes(CategoryGeneralRequired, CategoryGeneralElective, CategorySpecializedGeneral),
		idx.BreadthAll,
	)
}
