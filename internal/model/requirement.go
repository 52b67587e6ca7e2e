package model

import "strings"

// GraduationRequirement 毕业要求表，对应 graduation_requirements（按专业唯一）
type GraduationRequirement struct {
	RequirementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"requirement_id"`
	Major         string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"major" toml:"major"`

	// 各类别课程目录（声明顺序即索引构建顺序）
	MajorRequiredCourses      CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"major_required_courses" toml:"major_required_courses"`
	MajorElectiveCourses      CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"major_elective_courses" toml:"major_elective_courses"`
	GeneralRequiredCourses    CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"general_required_courses" toml:"general_required_courses"`
	GeneralElectiveCourses    CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"general_elective_courses" toml:"general_elective_courses"`
	SpecializedGeneralCourses CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"specialized_general_courses" toml:"specialized_general_courses"`
	SoftwareCourses           CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"software_courses" toml:"software_courses"`
	MSCCourses                CatalogItems `gorm:"type:jsonb;not null;default:'[]'" json:"msc_courses" toml:"msc_courses"`
	BreadthCourses            BreadthAreas `gorm:"type:jsonb;not null;default:'[]'" json:"breadth_courses" toml:"breadth_courses"`

	// BreadthAreaNames 逗号分隔的领域名；非空时覆盖 BreadthCourses 推导出的领域列表
	BreadthAreaNames string `gorm:"type:text;not null;default:''" json:"breadth_area_names" toml:"breadth_area_names"`

	// 学分门槛
	TotalRequired              int `gorm:"not null;default:0" json:"total_required" toml:"total_required"`
	MajorRequired              int `gorm:"not null;default:0" json:"major_required" toml:"major_required"`
	GeneralRequired            int `gorm:"not null;default:0" json:"general_required" toml:"general_required"`
	BreadthRequired            int `gorm:"not null;default:0" json:"breadth_required" toml:"breadth_required"`
	SoftwareRequired           int `gorm:"not null;default:0" json:"software_required" toml:"software_required"`
	MSCRequired                int `gorm:"not null;default:0" json:"msc_required" toml:"msc_required"`
	SpecializedGeneralRequired int `gorm:"not null;default:0" json:"specialized_general_required" toml:"specialized_general_required"`
	BaseModel
}

// TableName 指定表名
func (GraduationRequirement) TableName() string { return "graduation_requirements" }

// AreaNames 返回 드볼 领域列表：优先使用显式配置的逗号分隔列表，否则按存储顺序取领域名。
func (r *GraduationRequirement) AreaNames() []string {
	if strings.TrimSpace(r.BreadthAreaNames) != "" {
		var names []string
		seen := make(map[string]bool)
		for _, part := range strings.Split(r.BreadthAreaNames, ",") {
			name := strings.TrimSpace(part)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		return names
	}
	names := make([]string, 0, len(r.BreadthCourses))
	for _, a := range r.BreadthCourses {
		names = append(names, a.Area)
	}
	return names
}
