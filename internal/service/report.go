package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ErrUnknownReportKind 不支持的报表类型
var ErrUnknownReportKind = errors.New("unknown report kind")

// 可导出的报表类型
const (
	ReportKindSubject    = "subject"
	ReportKindFaculty    = "faculty"
	ReportKindDepartment = "department"
)

// ReportService 反馈报表的读模型
//
// 聚合在存储层完成，这里只做编排与 CSV 导出。
type ReportService struct {
	repo storage.FeedbackRepository
	log  *zap.Logger
}

// NewReportService 创建报表服务
func NewReportService(repo storage.FeedbackRepository, log *zap.Logger) *ReportService {
	return &ReportService{repo: repo, log: log}
}

// SubjectReports 按课程聚合的报表
func (s *ReportService) SubjectReports() ([]domain.SubjectReport, error) {
	return s.repo.SubjectReports()
}

// FacultyReports 按教师聚合的报表
func (s *ReportService) FacultyReports() ([]domain.FacultyReport, error) {
	return s.repo.FacultyReports()
}

// DepartmentReports 按院系聚合的报表，没有反馈的院系也会出现
func (s *ReportService) DepartmentReports() ([]domain.DepartmentReport, error) {
	return s.repo.DepartmentReports()
}

// ExportCSV 把指定类型的报表以 CSV 写入 w
func (s *ReportService) ExportCSV(kind string, w io.Writer) error {
	cw := csv.NewWriter(w)

	switch kind {
	case ReportKindSubject:
		rows, err := s.repo.SubjectReports()
		if err != nil {
			return fmt.Errorf("subject reports: %w", err)
		}
		if err := cw.Write([]string{"subject_code", "subject_name", "feedback_count", "average_score"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{
				r.SubjectCode,
				r.SubjectName,
				strconv.Itoa(r.FeedbackCount),
				formatScore(r.AverageScore),
			}); err != nil {
				return err
			}
		}

	case ReportKindFaculty:
		rows, err := s.repo.FacultyReports()
		if err != nil {
			return fmt.Errorf("faculty reports: %w", err)
		}
		if err := cw.Write([]string{"faculty_name", "feedback_count", "average_score"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{
				r.FacultyName,
				strconv.Itoa(r.FeedbackCount),
				formatScore(r.AverageScore),
			}); err != nil {
				return err
			}
		}

	case ReportKindDepartment:
		rows, err := s.repo.DepartmentReports()
		if err != nil {
			return fmt.Errorf("department reports: %w", err)
		}
		if err := cw.Write([]string{"department_name", "student_count", "feedback_count", "average_score"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{
				r.DepartmentName,
				strconv.Itoa(r.StudentCount),
				strconv.Itoa(r.FeedbackCount),
				formatScore(r.AverageScore),
			}); err != nil {
				return err
			}
		}

	default:
		return ErrUnknownReportKind
	}

	cw.Flush()
	return cw.Error()
}

// formatScore 统一保留两位小数
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
