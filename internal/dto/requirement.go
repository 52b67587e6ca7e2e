package dto

import "gradcheck/backend/internal/model"

// ── 毕业要求模块 DTO ──

// RequirementRequest 毕业要求整体写入（PUT /requirements/:major）
type RequirementRequest struct {
	MajorRequiredCourses      model.CatalogItems `json:"major_required_courses"`
	MajorElectiveCourses      model.CatalogItems `json:"major_elective_courses"`
	GeneralRequiredCourses    model.CatalogItems `json:"general_required_courses"`
	GeneralElectiveCourses    model.CatalogItems `json:"general_elective_courses"`
	SpecializedGeneralCourses model.CatalogItems `json:"specialized_general_courses"`
	SoftwareCourses           model.CatalogItems `json:"software_courses"`
	MSCCourses                model.CatalogItems `json:"msc_courses"`
	BreadthCourses            model.BreadthAreas `json:"breadth_courses"`
	BreadthAreaNames          string             `json:"breadth_area_names"`

	TotalRequired              int `json:"total_required"               binding:"min=0"`
	MajorRequired              int `json:"major_required"               binding:"min=0"`
	GeneralRequired            int `json:"general_required"             binding:"min=0"`
	BreadthRequired            int `json:"breadth_required"             binding:"min=0"`
	SoftwareRequired           int `json:"software_required"            binding:"min=0"`
	MSCRequired                int `json:"msc_required"                 binding:"min=0"`
	SpecializedGeneralRequired int `json:"specialized_general_required" binding:"min=0"`
}

// ToModel 转换为存储模型
func (r *RequirementRequest) ToModel(major string) *model.GraduationRequirement {
	return &model.GraduationRequirement{
		Major:                      major,
		MajorRequiredCourses:       nonNilItems(r.MajorRequiredCourses),
		MajorElectiveCourses:       nonNilItems(r.MajorElectiveCourses),
		GeneralRequiredCourses:     nonNilItems(r.GeneralRequiredCourses),
		GeneralElectiveCourses:     nonNilItems(r.GeneralElectiveCourses),
		SpecializedGeneralCourses:  nonNilItems(r.SpecializedGeneralCourses),
		SoftwareCourses:            nonNilItems(r.SoftwareCourses),
		MSCCourses:                 nonNilItems(r.MSCCourses),
		BreadthCourses:             nonNilAreas(r.BreadthCourses),
		BreadthAreaNames:           r.BreadthAreaNames,
		TotalRequired:              r.TotalRequired,
		MajorRequired:              r.MajorRequired,
		GeneralRequired:            r.GeneralRequired,
		BreadthRequired:            r.BreadthRequired,
		SoftwareRequired:           r.SoftwareRequired,
		MSCRequired:                r.MSCRequired,
		SpecializedGeneralRequired: r.SpecializedGeneralRequired,
	}
}

func nonNilItems(items model.CatalogItems) model.CatalogItems {
	if items == nil {
		return model.CatalogItems{}
	}
	return items
}

func nonNilAreas(areas model.BreadthAreas) model.BreadthAreas {
	if areas == nil {
		return model.BreadthAreas{}
	}
	return areas
}
