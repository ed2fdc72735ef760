package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage/memory"
)

type feedbackFixture struct {
	svc      *FeedbackService
	store    *memory.Store
	dept     *domain.Department
	student  *domain.Student
	schedule *domain.Schedule
}

func newFeedbackFixture(t *testing.T) *feedbackFixture {
	t.Helper()

	store := memory.NewStore()
	now := time.Now().UTC()

	dept := &domain.Department{ID: uuid.NewString(), Code: "CSE", Name: "计算机科学与工程", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SaveDepartment(dept))

	faculty := &domain.Faculty{ID: uuid.NewString(), DepartmentID: dept.ID, Name: "王老师", Email: "wang@college.edu", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SaveFaculty(faculty))

	student := &domain.Student{ID: uuid.NewString(), DepartmentID: dept.ID, RollNumber: "CSE001", Name: "张三", Semester: 5, Section: "A", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SaveStudent(student))

	subject := &domain.Subject{ID: uuid.NewString(), DepartmentID: dept.ID, Code: "CS501", Name: "操作系统", Semester: 5, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SaveSubject(subject))

	schedule := &domain.Schedule{ID: uuid.NewString(), SubjectID: subject.ID, FacultyID: faculty.ID, Section: "A", AcademicYear: "2025-2026", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SaveSchedule(schedule))

	svc := NewFeedbackService(store, store, testMetrics, zap.NewNop())

	return &feedbackFixture{
		svc:      svc,
		store:    store,
		dept:     dept,
		student:  student,
		schedule: schedule,
	}
}

func allScores(score int) []int {
	scores := make([]int, domain.FeedbackQuestionCount)
	for i := range scores {
		scores[i] = score
	}
	return scores
}

func TestFeedbackSubmit(t *testing.T) {
	t.Run("正常提交一次反馈", func(t *testing.T) {
		f := newFeedbackFixture(t)

		fb, err := f.svc.Submit(SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "CSE001",
			ScheduleID:   f.schedule.ID,
			Scores:       allScores(4),
			Comment:      "讲得很清楚",
		})
		require.NoError(t, err)
		assert.Equal(t, f.student.ID, fb.StudentID)
		assert.Len(t, fb.Ratings, domain.FeedbackQuestionCount)
		assert.Equal(t, 1, fb.Ratings[0].Question)
	})

	t.Run("重复提交被拒绝", func(t *testing.T) {
		f := newFeedbackFixture(t)

		input := SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "CSE001",
			ScheduleID:   f.schedule.ID,
			Scores:       allScores(4),
		}
		_, err := f.svc.Submit(input)
		require.NoError(t, err)

		_, err = f.svc.Submit(input)
		assert.ErrorIs(t, err, ErrFeedbackAlreadySubmitted)
	})

	t.Run("题目数量不对被拒绝", func(t *testing.T) {
		f := newFeedbackFixture(t)

		_, err := f.svc.Submit(SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "CSE001",
			ScheduleID:   f.schedule.ID,
			Scores:       []int{5, 5, 5},
		})
		assert.ErrorIs(t, err, domain.ErrWrongRatingCount)
	})

	t.Run("评分超出区间被拒绝", func(t *testing.T) {
		f := newFeedbackFixture(t)

		scores := allScores(3)
		scores[4] = 6
		_, err := f.svc.Submit(SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "CSE001",
			ScheduleID:   f.schedule.ID,
			Scores:       scores,
		})
		assert.ErrorIs(t, err, domain.ErrRatingOutOfRange)
	})

	t.Run("学号不存在被拒绝", func(t *testing.T) {
		f := newFeedbackFixture(t)

		_, err := f.svc.Submit(SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "NOPE",
			ScheduleID:   f.schedule.ID,
			Scores:       allScores(3),
		})
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})

	t.Run("开课安排不存在被拒绝", func(t *testing.T) {
		f := newFeedbackFixture(t)

		_, err := f.svc.Submit(SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "CSE001",
			ScheduleID:   "missing",
			Scores:       allScores(3),
		})
		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestReportExportCSV(t *testing.T) {
	t.Run("按课程导出 CSV", func(t *testing.T) {
		f := newFeedbackFixture(t)

		_, err := f.svc.Submit(SubmitFeedbackInput{
			DepartmentID: f.dept.ID,
			RollNumber:   "CSE001",
			ScheduleID:   f.schedule.ID,
			Scores:       allScores(4),
		})
		require.NoError(t, err)

		reports := NewReportService(f.store, zap.NewNop())
		var buf strings.Builder
		require.NoError(t, reports.ExportCSV(ReportKindSubject, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "subject_code,subject_name,feedback_count,average_score", lines[0])
		assert.Contains(t, lines[1], "CS501")
		assert.Contains(t, lines[1], "4.00")
	})

	t.Run("未知报表类型返回错误", func(t *testing.T) {
		f := newFeedbackFixture(t)

		reports := NewReportService(f.store, zap.NewNop())
		err := reports.ExportCSV("bogus", &strings.Builder{})
		assert.ErrorIs(t, err, ErrUnknownReportKind)
	})
}
