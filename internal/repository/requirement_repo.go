package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gradcheck/backend/internal/model"
)

// RequirementRepository 毕业要求数据访问接口（按专业唯一）
type RequirementRepository interface {
	GetByMajor(ctx context.Context, major string) (*model.GraduationRequirement, error)
	// Upsert 按 major 插入或整体覆盖
	Upsert(ctx context.Context, req *model.GraduationRequirement) error
	ListMajors(ctx context.Context) ([]string, error)
}

type requirementRepo struct {
	db *gorm.DB
}

// NewRequirementRepo 创建 RequirementRepository 实例
func NewRequirementRepo(db *gorm.DB) RequirementRepository {
	return &requirementRepo{db: db}
}

func (r *requirementRepo) GetByMajor(ctx context.Context, major string) (*model.GraduationRequirement, error) {
	var req model.GraduationRequirement
	err := r.db.WithContext(ctx).
		Where("major = ?", major).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepo) Upsert(ctx context.Context, req *model.GraduationRequirement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "major"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"major_required_courses", "major_elective_courses",
				"general_required_courses", "general_elective_courses",
				"specialized_general_courses", "software_courses", "msc_courses",
				"breadth_courses", "breadth_area_names",
				"total_required", "major_required", "general_required", "breadth_required",
				"software_required", "msc_required", "specialized_general_required",
				"updated_at",
			}),
		}).
		Create(req).Error
}

func (r *requirementRepo) ListMajors(ctx context.Context) ([]string, error) {
	var majors []string
	err := r.db.WithContext(ctx).
		Model(&model.GraduationRequirement{}).
		Order("major ASC").
		Pluck("major", &majors).Error
	return majors, err
}
