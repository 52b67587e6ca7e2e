package repository

import (
	"context"

	"gorm.io/gorm"

	"gradcheck/backend/internal/model"
)

// UserRepository 学生账户数据访问
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByStudentID 学号唯一；不存在时返回 gorm.ErrRecordNotFound
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "user_id", id)
}

func (r *userRepo) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.findOne(ctx, "student_id", studentID)
}

// findOne column 只接受本文件内的常量列名
func (r *userRepo) findOne(ctx context.Context, column, value string) (*model.User, error) {
	user := new(model.User)
	if err := r.db.WithContext(ctx).Take(user, column+" = ?", value).Error; err != nil {
		return nil, err
	}
	return user, nil
}
