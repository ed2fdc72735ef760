package httptransport

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/service"
)

// ReportHandler 处理反馈报表的查询与导出
type ReportHandler struct {
	reports *service.ReportService
	log     *zap.Logger
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		log:     log,
	}
}

// SubjectReports 按课程聚合的报表
func (h *ReportHandler) SubjectReports(c *gin.Context) {
	rows, err := h.reports.SubjectReports()
	if err != nil {
		h.log.Error("subject report failed", zap.Error(err))
		InternalError(c, MsgReportFailed)
		return
	}
	Success(c, rows)
}

// FacultyReports 按教师聚合的报表
func (h *ReportHandler) FacultyReports(c *gin.Context) {
	rows, err := h.reports.FacultyReports()
	if err != nil {
		h.log.Error("faculty report failed", zap.Error(err))
		InternalError(c, MsgReportFailed)
		return
	}
	Success(c, rows)
}

// DepartmentReports 按院系聚合的报表
func (h *ReportHandler) DepartmentReports(c *gin.Context) {
	rows, err := h.reports.DepartmentReports()
	if err != nil {
		h.log.Error("department report failed", zap.Error(err))
		InternalError(c, MsgReportFailed)
		return
	}
	Success(c, rows)
}

// ExportCSV 以 CSV 附件形式导出指定类型的报表
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	kind := c.Param("kind")
	switch kind {
	case service.ReportKindSubject, service.ReportKindFaculty, service.ReportKindDepartment:
	default:
		BadRequest(c, GetErrorMessage(service.ErrUnknownReportKind))
		return
	}

	filename := fmt.Sprintf("%s-report-%s.csv", kind, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.reports.ExportCSV(kind, c.Writer); err != nil {
		// 响应头可能已经写出，这里只能记录日志
		h.log.Error("report export failed", zap.Error(err), zap.String("kind", kind))
	}
}
