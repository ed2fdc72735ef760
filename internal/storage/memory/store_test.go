package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

func newTestMailbox(address string, daily, monthly int) *domain.Mailbox {
	now := time.Now().UTC()
	return &domain.Mailbox{
		ID:           uuid.NewString(),
		Address:      address,
		Credential:   "secret",
		Host:         "smtp.example.edu",
		Port:         587,
		DailyLimit:   daily,
		MonthlyLimit: monthly,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestStore_SaveMailbox(t *testing.T) {
	s := NewStore()

	m := newTestMailbox("noreply@example.edu", 100, 15000)
	require.NoError(t, s.SaveMailbox(m))

	t.Run("地址重复被拒绝且不产生第二条记录", func(t *testing.T) {
		dup := newTestMailbox("noreply@example.edu", 50, 500)
		err := s.SaveMailbox(dup)
		assert.ErrorIs(t, err, storage.ErrMailboxExists)

		list, err := s.ListMailboxes()
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("地址大小写不敏感", func(t *testing.T) {
		dup := newTestMailbox("NoReply@Example.edu", 50, 500)
		assert.ErrorIs(t, s.SaveMailbox(dup), storage.ErrMailboxExists)
	})

	t.Run("按地址查询", func(t *testing.T) {
		got, err := s.GetMailboxByAddress("noreply@example.edu")
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
	})
}

func TestStore_IncrementSendCounters(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("超出日配额时拒绝且不写入", func(t *testing.T) {
		s := NewStore()
		m := newTestMailbox("a@example.edu", 2, 100)
		require.NoError(t, s.SaveMailbox(m))

		require.NoError(t, s.IncrementSendCounters(m.ID, now))
		require.NoError(t, s.IncrementSendCounters(m.ID, now))
		err := s.IncrementSendCounters(m.ID, now)
		assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

		got, err := s.GetMailbox(m.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.SentToday)
		assert.Equal(t, 2, got.SentThisMonth)
	})

	t.Run("昨天耗尽的日配额今天归零后可继续", func(t *testing.T) {
		s := NewStore()
		m := newTestMailbox("b@example.edu", 2, 100)
		yesterday := now.AddDate(0, 0, -1)
		m.SentToday = 2
		m.SentThisMonth = 2
		m.LastSentAt = &yesterday
		require.NoError(t, s.SaveMailbox(m))

		require.NoError(t, s.IncrementSendCounters(m.ID, now))

		got, err := s.GetMailbox(m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SentToday)
		assert.Equal(t, 3, got.SentThisMonth)
	})

	t.Run("月配额独立于日配额", func(t *testing.T) {
		s := NewStore()
		m := newTestMailbox("c@example.edu", 100, 3)
		lastMonth := now.AddDate(0, -1, 0)
		m.SentToday = 1
		m.SentThisMonth = 3
		m.LastSentAt = &lastMonth
		require.NoError(t, s.SaveMailbox(m))

		// 上个月的计数已失效，本月从零开始
		require.NoError(t, s.IncrementSendCounters(m.ID, now))
		got, _ := s.GetMailbox(m.ID)
		assert.Equal(t, 1, got.SentThisMonth)
	})

	t.Run("未知邮箱返回未找到", func(t *testing.T) {
		s := NewStore()
		err := s.IncrementSendCounters("missing", now)
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
	})
}

// 并发发送时最终计数不得超过配额上限
func TestStore_IncrementSendCounters_Concurrent(t *testing.T) {
	s := NewStore()
	const limit = 50
	m := newTestMailbox("burst@example.edu", limit, 15000)
	require.NoError(t, s.SaveMailbox(m))

	now := time.Now().UTC()
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < limit*3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementSendCounters(m.ID, now); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := s.GetMailbox(m.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, granted)
	assert.Equal(t, limit, got.SentToday)
	assert.LessOrEqual(t, got.SentToday, got.DailyLimit)
	assert.LessOrEqual(t, got.SentThisMonth, got.MonthlyLimit)
}

func TestStore_SendAttempts(t *testing.T) {
	s := NewStore()
	m := newTestMailbox("audit@example.edu", 10, 100)
	require.NoError(t, s.SaveMailbox(m))

	now := time.Now().UTC()
	for i, outcome := range []domain.SendOutcome{domain.OutcomeSent, domain.OutcomeSent, domain.OutcomeFailed} {
		require.NoError(t, s.AppendSendAttempt(&domain.SendAttempt{
			ID:        uuid.NewString(),
			MailboxID: m.ID,
			Outcome:   outcome,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	attempts, err := s.ListSendAttemptsSince(now)
	require.NoError(t, err)
	assert.Len(t, attempts, 3)

	attempts, err = s.ListSendAttemptsSince(now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, attempts)

	t.Run("未知邮箱的审计记录被拒绝", func(t *testing.T) {
		err := s.AppendSendAttempt(&domain.SendAttempt{
			ID:        uuid.NewString(),
			MailboxID: "missing",
			Outcome:   domain.OutcomeSent,
			CreatedAt: now,
		})
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
	})
}

func TestStore_Feedback(t *testing.T) {
	s := NewStore()
	now := time.Now().UTC()

	dept := &domain.Department{ID: uuid.NewString(), Code: "CSE", Name: "计算机学院", CreatedAt: now}
	require.NoError(t, s.SaveDepartment(dept))

	fac := &domain.Faculty{ID: uuid.NewString(), DepartmentID: dept.ID, Name: "张老师", Email: "zhang@example.edu", CreatedAt: now}
	require.NoError(t, s.SaveFaculty(fac))

	sub := &domain.Subject{ID: uuid.NewString(), DepartmentID: dept.ID, Code: "CS101", Name: "程序设计", Semester: 1, CreatedAt: now}
	require.NoError(t, s.SaveSubject(sub))

	sc := &domain.Schedule{ID: uuid.NewString(), SubjectID: sub.ID, FacultyID: fac.ID, Section: "A", AcademicYear: "2025-2026", CreatedAt: now}
	require.NoError(t, s.SaveSchedule(sc))

	st := &domain.Student{ID: uuid.NewString(), DepartmentID: dept.ID, RollNumber: "2025001", Name: "李同学", Semester: 1, CreatedAt: now}
	require.NoError(t, s.SaveStudent(st))

	ratings := make([]domain.Rating, domain.FeedbackQuestionCount)
	for i := range ratings {
		ratings[i] = domain.Rating{ID: uuid.NewString(), Question: i + 1, Score: 4}
	}
	fb := &domain.Feedback{
		ID:         uuid.NewString(),
		StudentID:  st.ID,
		ScheduleID: sc.ID,
		Ratings:    ratings,
		CreatedAt:  now,
	}
	require.NoError(t, s.SaveFeedback(fb))

	t.Run("重复提交被拒绝", func(t *testing.T) {
		dup := *fb
		dup.ID = uuid.NewString()
		assert.ErrorIs(t, s.SaveFeedback(&dup), storage.ErrFeedbackExists)
	})

	t.Run("课程报表聚合", func(t *testing.T) {
		reports, err := s.SubjectReports()
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "CS101", reports[0].SubjectCode)
		assert.Equal(t, 1, reports[0].FeedbackCount)
		assert.InDelta(t, 4.0, reports[0].AverageScore, 0.001)
	})

	t.Run("院系报表包含零反馈院系", func(t *testing.T) {
		empty := &domain.Department{ID: uuid.NewString(), Code: "EEE", Name: "电子学院", CreatedAt: now}
		require.NoError(t, s.SaveDepartment(empty))

		reports, err := s.DepartmentReports()
		require.NoError(t, err)
		assert.Len(t, reports, 2)
	})
}
