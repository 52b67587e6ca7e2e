package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gradcheck/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, string) {
	t.Helper()
	cfg := newTestConfig()
	repo, mocks := newMockRepository()
	u := seedAnalysisData(t, mocks, model.CourseRecords{
		{Code: "100001", Credit: 3, Grade: "A+", Semester: "2-1"},
		{Code: "700001", Credit: 3, Grade: "P", Semester: "1-2"},
	})
	analysisSvc := NewAnalysisService(cfg, repo, zap.NewNop())
	return NewExportService(cfg, analysisSvc, zap.NewNop()), u.UserID
}

// ── ExportXLSX ──

func TestExportService_ExportXLSX(t *testing.T) {
	svc, userID := setupTestExportService(t)

	buf, filename, err := svc.ExportXLSX(context.Background(), userID)
	if err != nil {
		t.Fatalf("ExportXLSX 失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾，实际 %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("生成的文件无法打开: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "학점 현황" {
		t.Fatalf("Sheet 列表不符: %v", sheets)
	}
	total, _ := f.GetCellValue("학점 현황", "A3")
	if total != "총 학점" {
		t.Errorf("A3 应为总学分行，实际 %q", total)
	}
	rows, _ := f.GetRows("이수 과목")
	if len(rows) != 3 {
		t.Errorf("已修课程应为表头 + 2 行，实际 %d 行", len(rows))
	}
	missing, _ := f.GetCellValue("미이수 필수", "C2")
	if missing != "운영체제" {
		t.Errorf("未修必修应列出 운영체제，实际 %q", missing)
	}
}

func TestExportService_ExportXLSX_NotReady(t *testing.T) {
	cfg := newTestConfig()
	repo, _ := newMockRepository()
	svc := NewExportService(cfg, NewAnalysisService(cfg, repo, zap.NewNop()), zap.NewNop())

	if _, _, err := svc.ExportXLSX(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望透传 ErrUserNotFound，实际: %v", err)
	}
}

// ── ExportPDF ──

func TestExportService_ExportPDF(t *testing.T) {
	svc, userID := setupTestExportService(t)

	buf, filename, err := svc.ExportPDF(context.Background(), userID)
	if err != nil {
		t.Fatalf("ExportPDF 失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".pdf") {
		t.Errorf("文件名应以 .pdf 结尾，实际 %s", filename)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("输出不是 PDF 文件")
	}
}

func TestExportService_ExportPDF_BadFont(t *testing.T) {
	cfg := newTestConfig()
	cfg.Report.FontPath = "/nonexistent/font.ttf"
	repo, mocks := newMockRepository()
	u := seedAnalysisData(t, mocks, model.CourseRecords{{Code: "100001", Credit: 3, Grade: "A+"}})
	svc := NewExportService(cfg, NewAnalysisService(cfg, repo, zap.NewNop()), zap.NewNop())

	if _, _, err := svc.ExportPDF(context.Background(), u.UserID); !errors.Is(err, ErrExportGenerateFail) {
		t.Errorf("字体缺失应返回 ErrExportGenerateFail，实际: %v", err)
	}
}
