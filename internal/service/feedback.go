package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/monitoring"
	"campusfeedback/backend/internal/storage"
)

var (
	// ErrFeedbackAlreadySubmitted 该学生已对该开课安排提交过反馈
	ErrFeedbackAlreadySubmitted = errors.New("feedback already submitted for this schedule")
	// ErrStudentNotFound 学号在该院系内不存在
	ErrStudentNotFound = errors.New("student not found")
	// ErrScheduleNotFound 开课安排不存在
	ErrScheduleNotFound = errors.New("schedule not found")
)

// FeedbackService 学生反馈提交服务
//
// 学生以院系加学号自报身份，无需登录。一名学生对一条开课
// 安排只能提交一次，提交后不可修改。
type FeedbackService struct {
	feedback storage.FeedbackRepository
	academic storage.AcademicRepository
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(
	feedback storage.FeedbackRepository,
	academic storage.AcademicRepository,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedback: feedback,
		academic: academic,
		metrics:  metrics,
		log:      log,
	}
}

// SubmitFeedbackInput 提交反馈的输入
type SubmitFeedbackInput struct {
	DepartmentID string
	RollNumber   string
	ScheduleID   string
	Scores       []int // 固定 10 题，每题 1-5 分
	Comment      string
}

// Submit 提交一次反馈
func (s *FeedbackService) Submit(input SubmitFeedbackInput) (*domain.Feedback, error) {
	if err := domain.ValidateScores(input.Scores); err != nil {
		s.metrics.RecordFeedbackRejected("invalid_ratings")
		return nil, err
	}

	student, err := s.academic.GetStudentByRoll(input.DepartmentID, strings.TrimSpace(input.RollNumber))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordFeedbackRejected("student_not_found")
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("lookup student: %w", err)
	}

	schedule, err := s.academic.GetSchedule(input.ScheduleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordFeedbackRejected("schedule_not_found")
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("lookup schedule: %w", err)
	}

	fb := &domain.Feedback{
		ID:         uuid.NewString(),
		StudentID:  student.ID,
		ScheduleID: schedule.ID,
		Comment:    strings.TrimSpace(input.Comment),
		CreatedAt:  time.Now().UTC(),
	}
	fb.Ratings = make([]domain.Rating, 0, len(input.Scores))
	for i, score := range input.Scores {
		fb.Ratings = append(fb.Ratings, domain.Rating{
			ID:         uuid.NewString(),
			FeedbackID: fb.ID,
			Question:   i + 1,
			Score:      score,
		})
	}

	if err := s.feedback.SaveFeedback(fb); err != nil {
		if errors.Is(err, storage.ErrFeedbackExists) {
			s.metrics.RecordFeedbackRejected("duplicate")
			return nil, ErrFeedbackAlreadySubmitted
		}
		return nil, fmt.Errorf("save feedback: %w", err)
	}

	s.metrics.RecordFeedbackSubmitted()
	s.log.Info("feedback submitted",
		zap.String("student_id", student.ID),
		zap.String("schedule_id", schedule.ID),
	)
	return fb, nil
}

// ListBySchedule 列出某条开课安排收到的全部反馈
func (s *FeedbackService) ListBySchedule(scheduleID string) ([]domain.Feedback, error) {
	if _, err := s.academic.GetSchedule(scheduleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return s.feedback.ListFeedbackBySchedule(scheduleID)
}
