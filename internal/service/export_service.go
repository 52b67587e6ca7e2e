package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gradcheck/backend/config"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成报表文件失败")

// ExportService 分析报表导出
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportXLSX 导出为 Excel：学分汇总 / 已修课程 / 未修必修 三个 Sheet
	ExportXLSX(ctx context.Context, userID string) (*bytes.Buffer, string, error)
	// ExportPDF 导出为单页 PDF 摘要
	ExportPDF(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	analysis AnalysisService
	fontPath string
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, analysisSvc AnalysisService, logger *zap.Logger) ExportService {
	return &exportService{
		analysis: analysisSvc,
		fontPath: cfg.Report.FontPath,
		logger:   logger,
	}
}

func exportFilename(ext string) string {
	return fmt.Sprintf("졸업요건_분석_%s.%s", time.Now().Format("20060102"), ext)
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportXLSX(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	a, err := s.analysis.Analyze(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Sheet 1: 学分汇总
	summary := "학점 현황"
	idx, _ := f.NewSheet(summary)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(summary, "A1", a.Result.Message)
	f.MergeCell(summary, "A1", "E1")
	writeHeader(f, summary, 2, headerStyle, "구분", "이수", "기준", "부족", "충족")
	row := 3
	for _, l := range a.CreditSummary() {
		f.SetCellValue(summary, cell("A", row), l.Category)
		f.SetCellValue(summary, cell("B", row), l.Completed)
		f.SetCellValue(summary, cell("C", row), l.Required)
		f.SetCellValue(summary, cell("D", row), l.Remaining)
		f.SetCellValue(summary, cell("E", row), yesNo(l.Satisfied))
		row++
	}
	row++
	writeHeader(f, summary, row, headerStyle, "드볼 영역", "이수", "과목 수", "학점")
	row++
	for _, area := range a.Breadth.Areas {
		f.SetCellValue(summary, cell("A", row), area.Area)
		f.SetCellValue(summary, cell("B", row), yesNo(area.Covered))
		f.SetCellValue(summary, cell("C", row), area.CoursesCount)
		f.SetCellValue(summary, cell("D", row), area.CompletedCredit)
		row++
	}
	f.SetColWidth(summary, "A", "A", 18)
	f.SetColWidth(summary, "B", "E", 10)

	// Sheet 2: 已修课程（按学期）
	courses := "이수 과목"
	f.NewSheet(courses)
	writeHeader(f, courses, 1, headerStyle, "학기", "학수번호", "과목명", "학점", "성적", "구분")
	row = 2
	for _, group := range a.CoursesBySemester("") {
		for _, c := range group.Courses {
			f.SetCellValue(courses, cell("A", row), group.Semester)
			f.SetCellValue(courses, cell("B", row), c.Code)
			f.SetCellValue(courses, cell("C", row), c.Name)
			f.SetCellValue(courses, cell("D", row), c.Credit)
			f.SetCellValue(courses, cell("E", row), c.Grade)
			f.SetCellValue(courses, cell("F", row), c.Type)
			row++
		}
	}
	f.SetColWidth(courses, "A", "B", 12)
	f.SetColWidth(courses, "C", "C", 28)
	f.SetColWidth(courses, "F", "F", 16)

	// Sheet 3: 未修必修
	missing := "미이수 필수"
	f.NewSheet(missing)
	writeHeader(f, missing, 1, headerStyle, "권장 학기", "학수번호", "과목명")
	row = 2
	for _, m := range a.AllMissingRequired() {
		f.SetCellValue(missing, cell("A", row), m.Semester)
		f.SetCellValue(missing, cell("B", row), m.Code)
		f.SetCellValue(missing, cell("C", row), m.Name)
		row++
	}
	f.SetColWidth(missing, "A", "B", 12)
	f.SetColWidth(missing, "C", "C", 28)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportFilename("xlsx"), nil
}

// ═══════════════════════════════════════════════════════════
// ExportPDF
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportPDF(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	a, err := s.analysis.Analyze(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Graduation requirement report", false)
	pdf.SetAuthor("gradcheck", false)

	family, tr := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if s.fontPath != "" {
		pdf.AddUTF8Font("report", "", s.fontPath)
		pdf.AddUTF8Font("report", "B", s.fontPath)
		family, tr = "report", func(s string) string { return s }
	}
	if pdf.Err() {
		s.logger.Error("加载 PDF 字体失败", zap.String("font", s.fontPath), zap.Error(pdf.Error()))
		return nil, "", ErrExportGenerateFail
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, tr("졸업요건 분석"))
	pdf.Ln(12)

	pdf.SetFont(family, "", 11)
	pdf.MultiCell(0, 6, tr(a.Result.Message), "", "L", false)
	pdf.Ln(4)

	// 学分汇总表
	widths := []float64{50, 30, 30, 30, 30}
	pdf.SetFont(family, "B", 11)
	for i, h := range []string{"구분", "이수", "기준", "부족", "충족"} {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(family, "", 11)
	for _, l := range a.CreditSummary() {
		cols := []string{
			l.Category,
			fmt.Sprint(l.Completed),
			fmt.Sprint(l.Required),
			fmt.Sprint(l.Remaining),
			yesNo(l.Satisfied),
		}
		for i, v := range cols {
			pdf.CellFormat(widths[i], 7, tr(v), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	s.writePDFSection(pdf, family, tr, "미이수 드볼 영역", a.Breadth.MissingAreas)

	var missing []string
	for _, m := range a.AllMissingRequired() {
		missing = append(missing, fmt.Sprintf("[%s] %s %s", m.Semester, m.Code, m.Name))
	}
	s.writePDFSection(pdf, family, tr, "미이수 전공필수", missing)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("写入 PDF 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportFilename("pdf"), nil
}

func (s *exportService) writePDFSection(pdf *gofpdf.Fpdf, family string, tr func(string) string, title string, lines []string) {
	pdf.SetFont(family, "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)

	pdf.SetFont(family, "", 11)
	if len(lines) == 0 {
		pdf.MultiCell(0, 6, tr("없음"), "", "L", false)
		pdf.Ln(3)
		return
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pdf.MultiCell(0, 6, tr("- "+line), "", "L", false)
	}
	pdf.Ln(3)
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, row int, style int, titles ...string) {
	for i, t := range titles {
		f.SetCellValue(sheet, cell(colName(i), row), t)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(colName(len(titles)-1), row), style)
}

func yesNo(ok bool) string {
	if ok {
		return "O"
	}
	return "X"
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
