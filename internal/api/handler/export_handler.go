package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/internal/service"
	"gradcheck/backend/pkg/response"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ExportHandler 分析报表导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出分析结果 Excel
// GET /api/v1/analysis/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, h.exportSvc.ExportXLSX, mimeXLSX)
}

// ExportPDF 导出分析结果 PDF
// GET /api/v1/analysis/export.pdf
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.exportSvc.ExportPDF, mimePDF)
}

func (h *ExportHandler) export(
	c *gin.Context,
	gen func(ctx context.Context, userID string) (*bytes.Buffer, string, error),
	contentType string,
) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := gen(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, contentType, filename, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.Error(c, http.StatusInternalServerError, 15001, "生成报表文件失败")
		return
	}
	handleAnalysisError(c, err)
}
