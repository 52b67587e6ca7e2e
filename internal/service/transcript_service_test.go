package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"gradcheck/backend/config"
	"gradcheck/backend/internal/dto"
	"gradcheck/backend/internal/model"
	"gradcheck/backend/internal/ocr"
)

// ── 测试辅助 ──

// fakeRecognizer 按调用顺序返回预设结果；耗尽后返回最后一项
type fakeRecognizer struct {
	mu      sync.Mutex
	results [][]ocr.Item
	errs    []error
	calls   int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) ([]ocr.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], nil
}

func ocrCell(text string, cx, cy float64) ocr.Item {
	return ocr.RectItem(text, 0.95, cx-30, cy-10, cx+30, cy+10)
}

// transcriptPageItems 一页成绩单：1 学年 1 学期，rows 每项为 {code, credit, grade}
func transcriptPageItems(rows ...[3]string) []ocr.Item {
	items := []ocr.Item{
		ocrCell("2021학년도", 80, 20),
		ocrCell("1학년", 180, 20),
		ocrCell("1학기", 260, 20),
		ocrCell("학수번호", 100, 60),
		ocrCell("학점", 400, 60),
		ocrCell("성적", 480, 60),
	}
	for i, r := range rows {
		y := 100 + float64(i)*30
		items = append(items, ocrCell(r[0], 100, y), ocrCell(r[1], 400, y), ocrCell(r[2], 480, y))
	}
	return items
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 600, 300))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(10, 10, color.Gray{Y: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码 PNG 失败: %v", err)
	}
	return buf.Bytes()
}

func setupTestTranscriptService(t *testing.T, rec ocr.Recognizer) (TranscriptService, *mockRepos, *mockQueue) {
	t.Helper()
	cfg := newTestConfig()
	cfg.Upload = config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20, MaxFiles: 3}
	cfg.OCR = config.OCRConfig{MinConfidence: 0.15}
	repo, mocks := newMockRepository()
	q := &mockQueue{}
	return NewTranscriptService(cfg, repo, rec, q, zap.NewNop()), mocks, q
}

func upload(t *testing.T, svc TranscriptService, owner string, pages int) *dto.TranscriptResponse {
	t.Helper()
	files := make([]UploadFile, 0, pages)
	for i := 0; i < pages; i++ {
		files = append(files, UploadFile{Filename: "p.png", Reader: bytes.NewReader(pngBytes(t))})
	}
	resp, err := svc.Upload(context.Background(), owner, files)
	if err != nil {
		t.Fatalf("Upload 失败: %v", err)
	}
	return resp
}

// ── Upload ──

func TestTranscriptService_Upload(t *testing.T) {
	svc, mocks, q := setupTestTranscriptService(t, &fakeRecognizer{})

	resp := upload(t, svc, "user-1", 2)
	if resp.Status != model.TranscriptStatusPending {
		t.Errorf("期望 PENDING，实际=%s", resp.Status)
	}
	if resp.PageCount != 2 {
		t.Errorf("期望 2 页，实际=%d", resp.PageCount)
	}
	if len(q.ids) != 1 || q.ids[0] != resp.ID {
		t.Errorf("期望投递 1 个任务，实际 %v", q.ids)
	}

	pages, _ := mocks.transcript.ListPages(context.Background(), resp.ID)
	for _, p := range pages {
		if _, err := os.Stat(p.FilePath); err != nil {
			t.Errorf("第 %d 页文件未保存: %v", p.PageNumber, err)
		}
		if filepath.Ext(p.FilePath) != ".png" {
			t.Errorf("文件扩展名应为 .png，实际 %s", p.FilePath)
		}
	}
}

func TestTranscriptService_Upload_Validation(t *testing.T) {
	svc, _, _ := setupTestTranscriptService(t, &fakeRecognizer{})
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "u", nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("期望 ErrNoFiles，实际: %v", err)
	}

	text := []UploadFile{{Filename: "a.txt", Reader: strings.NewReader("hello world")}}
	if _, err := svc.Upload(ctx, "u", text); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("期望 ErrUnsupportedFile，实际: %v", err)
	}

	big := []UploadFile{{Filename: "big.png", Reader: bytes.NewReader(make([]byte, 2<<20))}}
	if _, err := svc.Upload(ctx, "u", big); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("期望 ErrFileTooLarge，实际: %v", err)
	}

	many := make([]UploadFile, 4)
	if _, err := svc.Upload(ctx, "u", many); !errors.Is(err, ErrTooManyFiles) {
		t.Errorf("期望 ErrTooManyFiles，实际: %v", err)
	}
}

func TestTranscriptService_Upload_EnqueueFailure(t *testing.T) {
	svc, mocks, q := setupTestTranscriptService(t, &fakeRecognizer{})
	q.err = errors.New("queue down")

	_, err := svc.Upload(context.Background(), "user-1", []UploadFile{{Reader: bytes.NewReader(pngBytes(t))}})
	if err == nil {
		t.Fatal("投递失败应返回错误")
	}
	latest, _ := mocks.transcript.LatestByOwner(context.Background(), "user-1")
	if latest == nil || latest.Status != model.TranscriptStatusError {
		t.Errorf("投递失败后应标记 ERROR 以便重试，实际 %+v", latest)
	}
}

// ── Process ──

func TestTranscriptService_Process_Success(t *testing.T) {
	rec := &fakeRecognizer{results: [][]ocr.Item{
		transcriptPageItems([3]string{"123456", "3", "A+"}, [3]string{"123457", "3", "B0"}),
		// 第二页与第一页有一行重叠
		transcriptPageItems([3]string{"123457", "3", "B0"}, [3]string{"123458", "2", "P"}),
	}}
	svc, mocks, _ := setupTestTranscriptService(t, rec)
	resp := upload(t, svc, "user-1", 2)

	if err := svc.Process(context.Background(), resp.ID); err != nil {
		t.Fatalf("Process 失败: %v", err)
	}

	tr, _ := mocks.transcript.GetByID(context.Background(), resp.ID)
	if tr.Status != model.TranscriptStatusDone {
		t.Fatalf("期望 DONE，实际=%s", tr.Status)
	}
	if len(tr.ParsedData) != 3 {
		t.Fatalf("跨页重复行应合并，期望 3 条，实际 %d: %+v", len(tr.ParsedData), tr.ParsedData)
	}
	if tr.ParsedData[0].Semester != "1-1" {
		t.Errorf("期望学期 1-1，实际=%s", tr.ParsedData[0].Semester)
	}
}

func TestTranscriptService_Process_SkipsFailedPage(t *testing.T) {
	rec := &fakeRecognizer{
		results: [][]ocr.Item{nil, transcriptPageItems([3]string{"123456", "3", "A+"})},
		errs:    []error{errors.New("tesseract crashed")},
	}
	svc, mocks, _ := setupTestTranscriptService(t, rec)
	resp := upload(t, svc, "user-1", 2)

	if err := svc.Process(context.Background(), resp.ID); err != nil {
		t.Fatalf("单页失败不应中断任务: %v", err)
	}
	tr, _ := mocks.transcript.GetByID(context.Background(), resp.ID)
	if tr.Status != model.TranscriptStatusDone || len(tr.ParsedData) != 1 {
		t.Errorf("期望 DONE 且 1 条记录，实际 %s / %d", tr.Status, len(tr.ParsedData))
	}
}

func TestTranscriptService_Process_AllPagesFail(t *testing.T) {
	rec := &fakeRecognizer{errs: []error{errors.New("x"), errors.New("y")}}
	svc, mocks, _ := setupTestTranscriptService(t, rec)
	resp := upload(t, svc, "user-1", 2)

	if err := svc.Process(context.Background(), resp.ID); err == nil {
		t.Fatal("全部页失败应返回错误")
	}
	tr, _ := mocks.transcript.GetByID(context.Background(), resp.ID)
	if tr.Status != model.TranscriptStatusError || tr.ErrorMessage == nil {
		t.Errorf("期望 ERROR 且带错误信息，实际 %+v", tr)
	}
}

func TestTranscriptService_Process_AlreadyClaimed(t *testing.T) {
	rec := &fakeRecognizer{results: [][]ocr.Item{transcriptPageItems([3]string{"123456", "3", "A+"})}}
	svc, mocks, _ := setupTestTranscriptService(t, rec)
	resp := upload(t, svc, "user-1", 1)

	_ = mocks.transcript.UpdateStatus(context.Background(), resp.ID, model.TranscriptStatusPending, model.TranscriptStatusProcessing)

	if err := svc.Process(context.Background(), resp.ID); err != nil {
		t.Errorf("已被其他 worker 处理时应静默跳过，实际: %v", err)
	}
	if rec.calls != 0 {
		t.Errorf("不应调用识别器，实际 %d 次", rec.calls)
	}
}

// cancelOnRecognize 识别期间取消任务上下文，模拟 worker 超时或停机
type cancelOnRecognize struct {
	cancel context.CancelFunc
}

func (c *cancelOnRecognize) Recognize(ctx context.Context, _ []byte) ([]ocr.Item, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestTranscriptService_Process_CancelledDuringLastPage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, mocks, q := setupTestTranscriptService(t, &cancelOnRecognize{cancel: cancel})
	resp := upload(t, svc, "user-1", 1)

	err := svc.Process(ctx, resp.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("期望 context.Canceled，实际: %v", err)
	}
	tr, _ := mocks.transcript.GetByID(context.Background(), resp.ID)
	if tr.Status != model.TranscriptStatusError {
		t.Fatalf("取消后应标记 ERROR，实际=%s", tr.Status)
	}

	retried, err := svc.Retry(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("取消的任务应允许重试: %v", err)
	}
	if retried.Status != model.TranscriptStatusPending || q.ids[len(q.ids)-1] != resp.ID {
		t.Errorf("重试应回到 PENDING 并重新投递，实际 %s / %v", retried.Status, q.ids)
	}
}

func TestTranscriptService_Process_CompleteFails(t *testing.T) {
	rec := &fakeRecognizer{results: [][]ocr.Item{transcriptPageItems([3]string{"123456", "3", "A+"})}}
	svc, mocks, _ := setupTestTranscriptService(t, rec)
	mocks.transcript.completeErr = errors.New("db down")
	resp := upload(t, svc, "user-1", 1)

	if err := svc.Process(context.Background(), resp.ID); err == nil {
		t.Fatal("保存结果失败应返回错误")
	}
	tr, _ := mocks.transcript.GetByID(context.Background(), resp.ID)
	if tr.Status != model.TranscriptStatusError || tr.ErrorMessage == nil {
		t.Errorf("保存失败应标记 ERROR，实际 %+v", tr)
	}
}

// ── 查询与重试 ──

func TestTranscriptService_StatusAndParsed(t *testing.T) {
	rec := &fakeRecognizer{results: [][]ocr.Item{transcriptPageItems([3]string{"123456", "3", "A+"})}}
	svc, _, _ := setupTestTranscriptService(t, rec)
	ctx := context.Background()

	if _, err := svc.Status(ctx, "user-1"); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("未上传时期望 ErrTranscriptNotFound，实际: %v", err)
	}

	resp := upload(t, svc, "user-1", 1)
	if _, err := svc.Parsed(ctx, "user-1"); !errors.Is(err, ErrTranscriptNotReady) {
		t.Errorf("PENDING 时期望 ErrTranscriptNotReady，实际: %v", err)
	}

	_ = svc.Process(ctx, resp.ID)
	parsed, err := svc.Parsed(ctx, "user-1")
	if err != nil {
		t.Fatalf("Parsed 失败: %v", err)
	}
	if parsed.Count != 1 || parsed.Courses[0].Code != "123456" {
		t.Errorf("解析结果不符: %+v", parsed)
	}

	list, total, err := svc.List(ctx, "user-1", &dto.TranscriptListRequest{})
	if err != nil || total != 1 || len(list) != 1 {
		t.Errorf("历史列表不符: total=%d len=%d err=%v", total, len(list), err)
	}
}

func TestTranscriptService_Retry(t *testing.T) {
	rec := &fakeRecognizer{errs: []error{errors.New("x")}}
	svc, mocks, q := setupTestTranscriptService(t, rec)
	ctx := context.Background()
	resp := upload(t, svc, "user-1", 1)

	if _, err := svc.Retry(ctx, "user-1"); !errors.Is(err, ErrRetryNotAllowed) {
		t.Errorf("PENDING 时不允许重试，实际: %v", err)
	}

	_ = svc.Process(ctx, resp.ID)
	retried, err := svc.Retry(ctx, "user-1")
	if err != nil {
		t.Fatalf("Retry 失败: %v", err)
	}
	if retried.Status != model.TranscriptStatusPending || retried.ErrorMessage != nil {
		t.Errorf("重试后应为 PENDING 且清空错误，实际 %+v", retried)
	}
	if len(q.ids) != 2 {
		t.Errorf("重试应重新投递，实际队列 %v", q.ids)
	}
	tr, _ := mocks.transcript.GetByID(ctx, resp.ID)
	if tr.Status != model.TranscriptStatusPending {
		t.Errorf("存储状态应为 PENDING，实际 %s", tr.Status)
	}
}

func TestOCROptions(t *testing.T) {
	opts := OCROptions(config.OCRConfig{MinConfidence: 0.3, CodeColumnTolerance: 55, Rescan: false})
	if opts.MinConfidence != 0.3 || opts.CodeColumnTolerance != 55 || opts.Rescan {
		t.Errorf("配置未生效: %+v", opts)
	}
	if opts.GradeColumnTolerance != ocr.DefaultOptions().GradeColumnTolerance {
		t.Errorf("未配置项应取默认值，实际 %v", opts.GradeColumnTolerance)
	}
}
