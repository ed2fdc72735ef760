package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestMailbox_EffectiveCounts(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("从未发送过计数为零", func(t *testing.T) {
		m := Mailbox{SentToday: 42, SentThisMonth: 99}
		assert.Equal(t, 0, m.EffectiveDailyCount(now))
		assert.Equal(t, 0, m.EffectiveMonthlyCount(now))
	})

	t.Run("当天发送过计数保留", func(t *testing.T) {
		m := Mailbox{
			SentToday:     7,
			SentThisMonth: 30,
			LastSentAt:    timePtr(now.Add(-2 * time.Hour)),
		}
		assert.Equal(t, 7, m.EffectiveDailyCount(now))
		assert.Equal(t, 30, m.EffectiveMonthlyCount(now))
	})

	t.Run("昨天发送过日计数归零月计数保留", func(t *testing.T) {
		m := Mailbox{
			SentToday:     100,
			SentThisMonth: 300,
			LastSentAt:    timePtr(now.AddDate(0, 0, -1)),
		}
		assert.Equal(t, 0, m.EffectiveDailyCount(now))
		assert.Equal(t, 300, m.EffectiveMonthlyCount(now))
	})

	t.Run("上个月发送过两个计数都归零", func(t *testing.T) {
		m := Mailbox{
			SentToday:     100,
			SentThisMonth: 15000,
			LastSentAt:    timePtr(now.AddDate(0, -1, 0)),
		}
		assert.Equal(t, 0, m.EffectiveDailyCount(now))
		assert.Equal(t, 0, m.EffectiveMonthlyCount(now))
	})

	t.Run("跨年同月份不会被误判为同月", func(t *testing.T) {
		m := Mailbox{
			SentToday:     5,
			SentThisMonth: 50,
			LastSentAt:    timePtr(now.AddDate(-1, 0, 0)),
		}
		assert.Equal(t, 0, m.EffectiveMonthlyCount(now))
	})
}

func TestMailbox_State(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("停用优先于配额", func(t *testing.T) {
		m := Mailbox{IsActive: false, DailyLimit: 100, MonthlyLimit: 15000}
		assert.Equal(t, MailboxInactive, m.State(now))
		assert.False(t, m.Eligible(now))
	})

	t.Run("日配额耗尽为受限", func(t *testing.T) {
		m := Mailbox{
			IsActive:      true,
			DailyLimit:    10,
			MonthlyLimit:  15000,
			SentToday:     10,
			SentThisMonth: 10,
			LastSentAt:    timePtr(now.Add(-time.Hour)),
		}
		assert.Equal(t, MailboxLimited, m.State(now))
		assert.False(t, m.Eligible(now))
	})

	t.Run("昨天耗尽的配额今天恢复可用", func(t *testing.T) {
		m := Mailbox{
			IsActive:      true,
			DailyLimit:    10,
			MonthlyLimit:  15000,
			SentToday:     10,
			SentThisMonth: 10,
			LastSentAt:    timePtr(now.AddDate(0, 0, -1)),
		}
		assert.Equal(t, MailboxAvailable, m.State(now))
		assert.True(t, m.Eligible(now))
	})

	t.Run("状态快照中的剩余量不为负", func(t *testing.T) {
		m := Mailbox{
			IsActive:      true,
			DailyLimit:    10,
			MonthlyLimit:  100,
			SentToday:     12,
			SentThisMonth: 120,
			LastSentAt:    timePtr(now.Add(-time.Minute)),
		}
		st := NewMailboxStatus(m, now)
		assert.Equal(t, 0, st.DailyRemaining)
		assert.Equal(t, 0, st.MonthlyRemaining)
		assert.Equal(t, MailboxLimited, st.State)
	})

	t.Run("状态快照中的计数与剩余量自洽", func(t *testing.T) {
		m := Mailbox{
			IsActive:      true,
			DailyLimit:    10,
			MonthlyLimit:  100,
			SentToday:     10,
			SentThisMonth: 42,
			LastSentAt:    timePtr(now.AddDate(0, 0, -1)),
		}
		st := NewMailboxStatus(m, now)
		assert.Equal(t, 0, st.SentToday)
		assert.Equal(t, 10, st.DailyRemaining)
		assert.Equal(t, 42, st.SentThisMonth)
		assert.Equal(t, 58, st.MonthlyRemaining)
		assert.Equal(t, MailboxAvailable, st.State)
	})
}

func TestValidateRatings(t *testing.T) {
	valid := make([]Rating, FeedbackQuestionCount)
	for i := range valid {
		valid[i] = Rating{Question: i + 1, Score: 4}
	}

	assert.NoError(t, ValidateRatings(valid))

	short := valid[:FeedbackQuestionCount-1]
	assert.ErrorIs(t, ValidateRatings(short), ErrWrongRatingCount)

	outOfRange := make([]Rating, FeedbackQuestionCount)
	copy(outOfRange, valid)
	outOfRange[3].Score = 6
	assert.ErrorIs(t, ValidateRatings(outOfRange), ErrRatingOutOfRange)
}

func TestValidateScores(t *testing.T) {
	valid := make([]int, FeedbackQuestionCount)
	for i := range valid {
		valid[i] = 3
	}

	assert.NoError(t, ValidateScores(valid))
	assert.ErrorIs(t, ValidateScores(valid[:FeedbackQuestionCount-1]), ErrWrongRatingCount)

	outOfRange := make([]int, FeedbackQuestionCount)
	copy(outOfRange, valid)
	outOfRange[0] = 0
	assert.ErrorIs(t, ValidateScores(outOfRange), ErrRatingOutOfRange)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("pool@example.edu"))
	assert.ErrorIs(t, ValidateEmail(""), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("   "), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("not-an-address"), ErrInvalidEmail)

	long := strings.Repeat("a", MaxEmailLength) + "@example.edu"
	assert.ErrorIs(t, ValidateEmail(long), ErrEmailTooLong)
}
