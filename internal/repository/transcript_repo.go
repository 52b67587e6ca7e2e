package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gradcheck/backend/internal/model"
	pkgerrors "gradcheck/backend/pkg/errors"
)

// TranscriptRepository 成绩单数据访问接口
//
// 状态流转一律通过条件更新（WHERE status = 旧状态）完成，
// 影响行数为 0 时返回 pkgerrors.ErrStatusConflict。
type TranscriptRepository interface {
	// Create 创建成绩单及其全部页（同一事务）
	Create(ctx context.Context, transcript *model.Transcript) error
	GetByID(ctx context.Context, id string) (*model.Transcript, error)
	// LatestByOwner 返回用户最近一次上传的成绩单
	LatestByOwner(ctx context.Context, ownerID string) (*model.Transcript, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]model.Transcript, int64, error)
	ListPages(ctx context.Context, transcriptID string) ([]model.TranscriptPage, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
	// Complete PROCESSING → DONE 并写入解析结果
	Complete(ctx context.Context, id string, records model.CourseRecords) error
	// Fail PROCESSING → ERROR 并记录错误信息
	Fail(ctx context.Context, id, message string) error
}

type transcriptRepo struct {
	db *gorm.DB
}

// NewTranscriptRepo 创建 TranscriptRepository 实例
func NewTranscriptRepo(db *gorm.DB) TranscriptRepository {
	return &transcriptRepo{db: db}
}

func (r *transcriptRepo) Create(ctx context.Context, transcript *model.Transcript) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pages := transcript.Pages
		transcript.Pages = nil
		if err := tx.Create(transcript).Error; err != nil {
			return err
		}
		for i := range pages {
			pages[i].TranscriptID = transcript.TranscriptID
		}
		if len(pages) > 0 {
			if err := tx.Create(&pages).Error; err != nil {
				return err
			}
		}
		transcript.Pages = pages
		return nil
	})
}

func (r *transcriptRepo) GetByID(ctx context.Context, id string) (*model.Transcript, error) {
	var t model.Transcript
	err := r.db.WithContext(ctx).
		Preload("Pages", func(db *gorm.DB) *gorm.DB { return db.Order("page_number ASC") }).
		Where("transcript_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transcriptRepo) LatestByOwner(ctx context.Context, ownerID string) (*model.Transcript, error) {
	var t model.Transcript
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transcriptRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]model.Transcript, int64, error) {
	var list []model.Transcript
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Transcript{}).Where("owner_id = ?", ownerID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 列表不返回 parsed_data，避免大字段
	if err := db.Omit("parsed_data").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *transcriptRepo) ListPages(ctx context.Context, transcriptID string) ([]model.TranscriptPage, error) {
	var pages []model.TranscriptPage
	err := r.db.WithContext(ctx).
		Where("transcript_id = ?", transcriptID).
		Order("page_number ASC").
		Find(&pages).Error
	return pages, err
}

func (r *transcriptRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if to == model.TranscriptStatusPending {
		updates["error_message"] = nil
	}
	return r.transition(ctx, id, from, updates)
}

func (r *transcriptRepo) Complete(ctx context.Context, id string, records model.CourseRecords) error {
	if records == nil {
		records = model.CourseRecords{}
	}
	return r.transition(ctx, id, model.TranscriptStatusProcessing, map[string]interface{}{
		"status":        model.TranscriptStatusDone,
		"parsed_data":   records,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *transcriptRepo) Fail(ctx context.Context, id, message string) error {
	return r.transition(ctx, id, model.TranscriptStatusProcessing, map[string]interface{}{
		"status":        model.TranscriptStatusError,
		"error_message": message,
		"updated_at":    time.Now(),
	})
}

// transition 条件更新：仅当当前状态为 from 时生效
func (r *transcriptRepo) transition(ctx context.Context, id, from string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Transcript{}).
		Where("transcript_id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusConflict
	}
	return nil
}
