package memory

import (
	"sort"
	"strings"
	"time"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== Mailbox Repository ==========

// SaveMailbox 创建或更新邮箱，地址冲突返回 ErrMailboxExists
func (s *Store) SaveMailbox(m *domain.Mailbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	address := strings.ToLower(m.Address)
	if existingID, ok := s.byAddress[address]; ok && existingID != m.ID {
		return storage.ErrMailboxExists
	}

	if old, ok := s.mailboxes[m.ID]; ok {
		delete(s.byAddress, strings.ToLower(old.Address))
	}

	cp := *m
	s.mailboxes[m.ID] = &cp
	s.byAddress[address] = m.ID
	return nil
}

// GetMailbox 根据 ID 获取邮箱
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mailboxes[id]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}
	cp := *m
	return &cp, nil
}

// GetMailboxByAddress 根据地址获取邮箱
func (s *Store) GetMailboxByAddress(address string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byAddress[strings.ToLower(address)]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}
	cp := *s.mailboxes[id]
	return &cp, nil
}

// ListMailboxes 返回全部邮箱快照，按创建时间排序
func (s *Store) ListMailboxes() ([]domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Mailbox, 0, len(s.mailboxes))
	for _, m := range s.mailboxes {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SetMailboxActive 切换激活标记，停用的邮箱保留历史计数
func (s *Store) SetMailboxActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mailboxes[id]
	if !ok {
		return storage.ErrMailboxNotFound
	}
	m.IsActive = active
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// IncrementSendCounters 原子地完成惰性归零、配额校验与计数递增
//
// 整个检查-递增序列在写锁内执行，两个并发发送方不可能同时
// 抢到同一份仅剩一个单位的配额。
func (s *Store) IncrementSendCounters(id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mailboxes[id]
	if !ok {
		return storage.ErrMailboxNotFound
	}

	daily := m.EffectiveDailyCount(now)
	monthly := m.EffectiveMonthlyCount(now)
	if daily >= m.DailyLimit || monthly >= m.MonthlyLimit {
		return storage.ErrQuotaExceeded
	}

	m.SentToday = daily + 1
	m.SentThisMonth = monthly + 1
	sentAt := now
	m.LastSentAt = &sentAt
	m.UpdatedAt = now
	return nil
}

// AppendSendAttempt 追加一条发送审计记录
func (s *Store) AppendSendAttempt(a *domain.SendAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mailboxes[a.MailboxID]; !ok {
		return storage.ErrMailboxNotFound
	}
	cp := *a
	s.sendAttempts = append(s.sendAttempts, &cp)
	return nil
}

// ListSendAttemptsSince 返回指定时间之后的全部审计记录
func (s *Store) ListSendAttemptsSince(since time.Time) ([]domain.SendAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SendAttempt
	for _, a := range s.sendAttempts {
		if !a.CreatedAt.Before(since) {
			out = append(out, *a)
		}
	}
	return out, nil
}
