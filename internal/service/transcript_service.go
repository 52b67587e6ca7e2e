package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/model"
	"gradcheck/backend/internal/ocr"
	"gradcheck/backend/internal/repository"
	pkgerrors "gradcheck/backend/pkg/errors"
)

// ── 成绩单模块业务错误 ──

var (
	ErrTranscriptNotFound = errors.New("尚未上传成绩单")
	ErrTranscriptNotReady = errors.New("成绩单尚未解析完成")
	ErrNoFiles            = errors.New("请至少上传一张成绩单图片")
	ErrTooManyFiles       = errors.New("上传图片数量超出限制")
	ErrFileTooLarge       = errors.New("图片大小超出限制")
	ErrUnsupportedFile    = errors.New("仅支持 PNG 或 JPEG 图片")
	ErrRetryNotAllowed    = errors.New("只有识别失败的成绩单可以重试")
)

// JobQueue 识别任务投递（worker.Queue 满足该接口）
type JobQueue interface {
	Enqueue(ctx context.Context, transcriptID string) error
}

// UploadFile 一张待上传的成绩单页
type UploadFile struct {
	Filename string
	Reader   io.Reader
}

// TranscriptService 成绩单上传与识别业务接口
type TranscriptService interface {
	// Upload 保存图片、创建 PENDING 成绩单并投递识别任务
	Upload(ctx context.Context, ownerID string, files []UploadFile) (*dto.TranscriptResponse, error)
	// Process 后台识别单个成绩单（worker 调用）
	Process(ctx context.Context, transcriptID string) error
	// Retry 将最近一次失败的成绩单重新投递
	Retry(ctx context.Context, ownerID string) (*dto.TranscriptResponse, error)
	Status(ctx context.Context, ownerID string) (*dto.TranscriptResponse, error)
	Parsed(ctx context.Context, ownerID string) (*dto.ParsedTranscriptResponse, error)
	List(ctx context.Context, ownerID string, req *dto.TranscriptListRequest) ([]dto.TranscriptResponse, int64, error)
}

type transcriptService struct {
	repo       *repository.Repository
	recognizer ocr.Recognizer
	queue      JobQueue
	upload     config.UploadConfig
	ocrOpts    ocr.Options
	logger     *zap.Logger
}

// NewTranscriptService 创建 TranscriptService 实例
func NewTranscriptService(
	cfg *config.Config,
	repo *repository.Repository,
	recognizer ocr.Recognizer,
	queue JobQueue,
	logger *zap.Logger,
) TranscriptService {
	return &transcriptService{
		repo:       repo,
		recognizer: recognizer,
		queue:      queue,
		upload:     cfg.Upload,
		ocrOpts:    OCROptions(cfg.OCR),
		logger:     logger,
	}
}

// OCROptions 由配置生成重建参数，未配置项使用默认值
func OCROptions(c config.OCRConfig) ocr.Options {
	opts := ocr.DefaultOptions()
	opts.MinConfidence = c.MinConfidence
	if c.CodeColumnTolerance > 0 {
		opts.CodeColumnTolerance = c.CodeColumnTolerance
	}
	if c.GradeColumnTolerance > 0 {
		opts.GradeColumnTolerance = c.GradeColumnTolerance
	}
	if c.CreditColumnTolerance > 0 {
		opts.CreditColumnTolerance = c.CreditColumnTolerance
	}
	if c.NameColumnTolerance > 0 {
		opts.NameColumnTolerance = c.NameColumnTolerance
	}
	if c.RowGapRatio > 0 {
		opts.RowGapRatio = c.RowGapRatio
	}
	if c.RescanScale > 0 {
		opts.RescanScale = c.RescanScale
	}
	opts.Rescan = c.Rescan
	return opts
}

// ═══════════════════════════════════════════════════════════
// Upload
// ═══════════════════════════════════════════════════════════

func (s *transcriptService) Upload(ctx context.Context, ownerID string, files []UploadFile) (*dto.TranscriptResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.upload.MaxFiles > 0 && len(files) > s.upload.MaxFiles {
		return nil, ErrTooManyFiles
	}

	// 1. 先全部读入并校验，避免写入一半的文件
	type pageData struct {
		data []byte
		ext  string
	}
	pages := make([]pageData, 0, len(files))
	for _, f := range files {
		data, err := io.ReadAll(io.LimitReader(f.Reader, s.upload.MaxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", f.Filename, err)
		}
		if int64(len(data)) > s.upload.MaxBytes {
			return nil, ErrFileTooLarge
		}
		ext, ok := imageExt(data)
		if !ok {
			return nil, ErrUnsupportedFile
		}
		pages = append(pages, pageData{data: data, ext: ext})
	}

	// 2. 写入磁盘
	dir := filepath.Join(s.upload.Dir, ownerID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		s.logger.Error("创建上传目录失败", zap.String("dir", dir), zap.Error(err))
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	transcript := &model.Transcript{
		OwnerID: ownerID,
		Status:  model.TranscriptStatusPending,
	}
	for i, p := range pages {
		path := filepath.Join(dir, uuid.New().String()+p.ext)
		if err := os.WriteFile(path, p.data, 0o640); err != nil {
			s.logger.Error("保存成绩单图片失败", zap.String("path", path), zap.Error(err))
			return nil, fmt.Errorf("save page %d: %w", i+1, err)
		}
		transcript.Pages = append(transcript.Pages, model.TranscriptPage{
			PageNumber: i + 1,
			FilePath:   path,
		})
	}

	// 3. 入库
	if err := s.repo.Transcript.Create(ctx, transcript); err != nil {
		s.logger.Error("创建成绩单记录失败", zap.Error(err))
		return nil, err
	}

	// 4. 投递任务
	if err := s.queue.Enqueue(ctx, transcript.TranscriptID); err != nil {
		s.logger.Error("投递识别任务失败",
			zap.String("transcript_id", transcript.TranscriptID),
			zap.Error(err),
		)
		// 置为 ERROR，允许用户重试
		_ = s.repo.Transcript.UpdateStatus(ctx, transcript.TranscriptID, model.TranscriptStatusPending, model.TranscriptStatusError)
		return nil, fmt.Errorf("enqueue transcript: %w", err)
	}

	s.logger.Info("成绩单已上传",
		zap.String("transcript_id", transcript.TranscriptID),
		zap.String("owner_id", ownerID),
		zap.Int("pages", len(transcript.Pages)),
	)
	resp := dto.NewTranscriptResponse(transcript)
	return &resp, nil
}

// imageExt 按文件内容判断类型
func imageExt(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png", true
	case "image/jpeg":
		return ".jpg", true
	}
	return "", false
}

// ═══════════════════════════════════════════════════════════
// Process 后台识别
// ═══════════════════════════════════════════════════════════
//
// PENDING → PROCESSING 的条件更新保证同一成绩单只被一个 worker 处理。
// 单页识别失败只记录日志并跳过；全部页失败或任务被取消时标记 ERROR。

func (s *transcriptService) Process(ctx context.Context, transcriptID string) error {
	log := s.logger.With(zap.String("transcript_id", transcriptID))

	if err := s.repo.Transcript.UpdateStatus(ctx, transcriptID, model.TranscriptStatusPending, model.TranscriptStatusProcessing); err != nil {
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			log.Info("成绩单已被处理或不存在，跳过")
			return nil
		}
		return fmt.Errorf("claim transcript: %w", err)
	}

	pages, err := s.repo.Transcript.ListPages(ctx, transcriptID)
	if err != nil {
		return s.fail(ctx, transcriptID, "读取成绩单页失败", err)
	}

	results := make([][]model.CourseRecord, 0, len(pages))
	failed := 0
	for _, p := range pages {
		if ctx.Err() != nil {
			return s.fail(ctx, transcriptID, "识别超时或已取消", ctx.Err())
		}
		records, err := s.processPage(ctx, p)
		if err != nil {
			failed++
			log.Warn("成绩单页识别失败，已跳过",
				zap.Int("page", p.PageNumber),
				zap.Error(err),
			)
			continue
		}
		log.Debug("成绩单页识别完成", zap.Int("page", p.PageNumber), zap.Int("rows", len(records)))
		results = append(results, records)
	}
	// 末页识别期间被取消时，已跳过的页并非真正失败，不能以部分结果标记 DONE
	if ctx.Err() != nil {
		return s.fail(ctx, transcriptID, "识别超时或已取消", ctx.Err())
	}
	if len(pages) == 0 || failed == len(pages) {
		return s.fail(ctx, transcriptID, "所有页面识别失败", fmt.Errorf("%d/%d pages failed", failed, len(pages)))
	}

	records := ocr.MergePages(results...)
	if err := s.repo.Transcript.Complete(context.WithoutCancel(ctx), transcriptID, records); err != nil {
		return s.fail(ctx, transcriptID, "保存识别结果失败", err)
	}
	log.Info("成绩单识别完成",
		zap.Int("pages", len(pages)),
		zap.Int("failed_pages", failed),
		zap.Int("courses", len(records)),
	)
	return nil
}

func (s *transcriptService) processPage(ctx context.Context, p model.TranscriptPage) ([]model.CourseRecord, error) {
	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read page file: %w", err)
	}
	return ocr.ProcessPage(ctx, s.recognizer, data, s.ocrOpts)
}

// fail 标记 ERROR；ctx 可能已取消，状态写入使用不可取消的上下文
func (s *transcriptService) fail(ctx context.Context, transcriptID, message string, cause error) error {
	if err := s.repo.Transcript.Fail(context.WithoutCancel(ctx), transcriptID, message); err != nil {
		s.logger.Error("标记成绩单失败状态出错",
			zap.String("transcript_id", transcriptID),
			zap.Error(err),
		)
	}
	return fmt.Errorf("%s: %w", message, cause)
}

// ═══════════════════════════════════════════════════════════
// 查询与重试
// ═══════════════════════════════════════════════════════════

func (s *transcriptService) latest(ctx context.Context, ownerID string) (*model.Transcript, error) {
	t, err := s.repo.Transcript.LatestByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTranscriptNotFound
		}
		s.logger.Error("查询成绩单失败", zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (s *transcriptService) Retry(ctx context.Context, ownerID string) (*dto.TranscriptResponse, error) {
	t, err := s.latest(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TranscriptStatusError {
		return nil, ErrRetryNotAllowed
	}

	if err := s.repo.Transcript.UpdateStatus(ctx, t.TranscriptID, model.TranscriptStatusError, model.TranscriptStatusPending); err != nil {
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			return nil, ErrRetryNotAllowed
		}
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, t.TranscriptID); err != nil {
		s.logger.Error("重新投递识别任务失败", zap.String("transcript_id", t.TranscriptID), zap.Error(err))
		_ = s.repo.Transcript.UpdateStatus(ctx, t.TranscriptID, model.TranscriptStatusPending, model.TranscriptStatusError)
		return nil, fmt.Errorf("enqueue transcript: %w", err)
	}

	t.Status = model.TranscriptStatusPending
	t.ErrorMessage = nil
	resp := dto.NewTranscriptResponse(t)
	return &resp, nil
}

func (s *transcriptService) Status(ctx context.Context, ownerID string) (*dto.TranscriptResponse, error) {
	t, err := s.latest(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewTranscriptResponse(t)
	return &resp, nil
}

func (s *transcriptService) Parsed(ctx context.Context, ownerID string) (*dto.ParsedTranscriptResponse, error) {
	t, err := s.latest(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TranscriptStatusDone {
		return nil, ErrTranscriptNotReady
	}
	courses := []model.CourseRecord(t.ParsedData)
	if courses == nil {
		courses = []model.CourseRecord{}
	}
	return &dto.ParsedTranscriptResponse{
		ID:      t.TranscriptID,
		Status:  t.Status,
		Count:   len(courses),
		Courses: courses,
	}, nil
}

func (s *transcriptService) List(ctx context.Context, ownerID string, req *dto.TranscriptListRequest) ([]dto.TranscriptResponse, int64, error) {
	list, total, err := s.repo.Transcript.ListByOwner(ctx, ownerID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询成绩单列表失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.TranscriptResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewTranscriptResponse(&list[i]))
	}
	return out, total, nil
}
