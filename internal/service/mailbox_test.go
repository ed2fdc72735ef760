package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage/memory"
)

// fixedNow 测试用的固定时钟
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestMailboxService(t *testing.T) (*MailboxService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewMailboxService(store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

// seedMailbox 直接向存储写入一个指定状态的邮箱
func seedMailbox(t *testing.T, store *memory.Store, mutate func(*domain.Mailbox)) *domain.Mailbox {
	t.Helper()
	m := &domain.Mailbox{
		ID:           uuid.NewString(),
		Address:      uuid.NewString() + "@college.edu",
		Credential:   "secret",
		Host:         "smtp.college.edu",
		Port:         587,
		DailyLimit:   100,
		MonthlyLimit: 15000,
		IsActive:     true,
		CreatedAt:    fixedNow.Add(-24 * time.Hour),
		UpdatedAt:    fixedNow.Add(-24 * time.Hour),
	}
	if mutate != nil {
		mutate(m)
	}
	require.NoError(t, store.SaveMailbox(m))
	return m
}

func TestMailboxServiceAdd(t *testing.T) {
	t.Run("添加邮箱并应用默认配额", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		m, err := svc.Add(AddMailboxInput{
			Address:    "noreply@college.edu",
			Credential: "secret",
			Host:       "smtp.college.edu",
			Port:       587,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDailyLimit, m.DailyLimit)
		assert.Equal(t, domain.DefaultMonthlyLimit, m.MonthlyLimit)
		assert.True(t, m.IsActive)
		assert.Zero(t, m.SentToday)
		assert.Zero(t, m.SentThisMonth)
		assert.Nil(t, m.LastSentAt)
	})

	t.Run("地址重复返回错误", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		input := AddMailboxInput{
			Address:    "noreply@college.edu",
			Credential: "secret",
			Host:       "smtp.college.edu",
			Port:       587,
		}
		_, err := svc.Add(input)
		require.NoError(t, err)

		_, err = svc.Add(input)
		assert.ErrorIs(t, err, ErrMailboxExists)
	})

	t.Run("非法地址被拒绝", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.Add(AddMailboxInput{Address: "not-an-email", Port: 587})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestMailboxServiceSelectForSend(t *testing.T) {
	t.Run("空池返回无可用邮箱", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		_, err := svc.SelectForSend()
		assert.ErrorIs(t, err, ErrNoMailboxAvailable)
	})

	t.Run("停用的邮箱不参与选择", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		seedMailbox(t, store, func(m *domain.Mailbox) { m.IsActive = false })

		_, err := svc.SelectForSend()
		assert.ErrorIs(t, err, ErrNoMailboxAvailable)
	})

	t.Run("当日配额耗尽的邮箱不参与选择", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		sentAt := fixedNow.Add(-time.Hour)
		seedMailbox(t, store, func(m *domain.Mailbox) {
			m.DailyLimit = 10
			m.SentToday = 10
			m.SentThisMonth = 10
			m.LastSentAt = &sentAt
		})

		_, err := svc.SelectForSend()
		assert.ErrorIs(t, err, ErrNoMailboxAvailable)
	})

	t.Run("昨天打满的邮箱经惰性归零后重新可用", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		yesterday := fixedNow.AddDate(0, 0, -1)
		seeded := seedMailbox(t, store, func(m *domain.Mailbox) {
			m.DailyLimit = 10
			m.SentToday = 10
			m.SentThisMonth = 10
			m.LastSentAt = &yesterday
		})

		selected, err := svc.SelectForSend()
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, selected.ID)
	})

	t.Run("月配额耗尽即使日配额有余也不可用", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		sentAt := fixedNow.Add(-time.Hour)
		seedMailbox(t, store, func(m *domain.Mailbox) {
			m.MonthlyLimit = 100
			m.SentToday = 1
			m.SentThisMonth = 100
			m.LastSentAt = &sentAt
		})

		_, err := svc.SelectForSend()
		assert.ErrorIs(t, err, ErrNoMailboxAvailable)
	})

	t.Run("从未发送的邮箱优先于有发送历史的", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		sentAt := fixedNow.Add(-time.Minute)
		seedMailbox(t, store, func(m *domain.Mailbox) { m.LastSentAt = &sentAt })
		fresh := seedMailbox(t, store, nil)

		selected, err := svc.SelectForSend()
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, selected.ID)
	})

	t.Run("最久未用的邮箱优先", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		recent := fixedNow.Add(-time.Minute)
		stale := fixedNow.Add(-3 * time.Hour)
		seedMailbox(t, store, func(m *domain.Mailbox) { m.LastSentAt = &recent })
		oldest := seedMailbox(t, store, func(m *domain.Mailbox) { m.LastSentAt = &stale })

		selected, err := svc.SelectForSend()
		require.NoError(t, err)
		assert.Equal(t, oldest.ID, selected.ID)
	})
}

func TestMailboxServiceRecordOutcome(t *testing.T) {
	t.Run("成功结果递增计数并推进时间戳", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		m := seedMailbox(t, store, nil)

		require.NoError(t, svc.RecordOutcome(m.ID, domain.OutcomeSent, ""))

		got, err := store.GetMailbox(m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SentToday)
		assert.Equal(t, 1, got.SentThisMonth)
		require.NotNil(t, got.LastSentAt)
		assert.True(t, got.LastSentAt.Equal(fixedNow))
	})

	t.Run("失败结果不消耗配额", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		m := seedMailbox(t, store, nil)

		require.NoError(t, svc.RecordOutcome(m.ID, domain.OutcomeFailed, "connection refused"))

		got, err := store.GetMailbox(m.ID)
		require.NoError(t, err)
		assert.Zero(t, got.SentToday)
		assert.Zero(t, got.SentThisMonth)
		assert.Nil(t, got.LastSentAt)
	})

	t.Run("两种结果都会留下审计记录", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		m := seedMailbox(t, store, nil)

		require.NoError(t, svc.RecordOutcome(m.ID, domain.OutcomeSent, ""))
		require.NoError(t, svc.RecordOutcome(m.ID, domain.OutcomeFailed, "timeout"))

		attempts, err := store.ListSendAttemptsSince(fixedNow.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, attempts, 2)
	})

	t.Run("邮箱不存在返回错误", func(t *testing.T) {
		svc, _ := newTestMailboxService(t)

		err := svc.RecordOutcome("missing", domain.OutcomeSent, "")
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})
}

func TestMailboxServiceStatus(t *testing.T) {
	t.Run("状态快照按惰性归零规则折算", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		yesterday := fixedNow.AddDate(0, 0, -1)
		m := seedMailbox(t, store, func(mb *domain.Mailbox) {
			mb.DailyLimit = 10
			mb.SentToday = 10
			mb.SentThisMonth = 42
			mb.LastSentAt = &yesterday
		})

		statuses, err := svc.Status()
		require.NoError(t, err)
		require.Len(t, statuses, 1)

		st := statuses[0]
		assert.Equal(t, m.ID, st.ID)
		assert.Zero(t, st.SentToday)
		assert.Equal(t, 10, st.DailyRemaining)
		assert.Equal(t, 42, st.SentThisMonth)
		assert.Equal(t, domain.MailboxAvailable, st.State)
	})
}

func TestMailboxServiceEmailStats(t *testing.T) {
	t.Run("缺少数据的日期补零", func(t *testing.T) {
		svc, store := newTestMailboxService(t)
		m := seedMailbox(t, store, nil)

		require.NoError(t, svc.RecordOutcome(m.ID, domain.OutcomeSent, ""))
		require.NoError(t, svc.RecordOutcome(m.ID, domain.OutcomeFailed, "timeout"))

		stats, err := svc.EmailStats(7)
		require.NoError(t, err)
		require.Len(t, stats, 7)

		today := stats[6]
		assert.Equal(t, fixedNow.Format("2006-01-02"), today.Date)
		assert.Equal(t, 2, today.TotalEmails)
		assert.Equal(t, 1, today.SentEmails)
		assert.Equal(t, 1, today.FailedEmails)

		for _, day := range stats[:6] {
			assert.Zero(t, day.TotalEmails)
		}
	})
}
