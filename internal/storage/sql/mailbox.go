package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== Mailbox Repository ==========

// SaveMailbox 创建或更新邮箱，地址冲突返回 ErrMailboxExists
func (s *Store) SaveMailbox(m *domain.Mailbox) error {
	query := s.rebind(`
		INSERT INTO mailboxes (id, address, credential, host, port, daily_limit, monthly_limit,
		                       is_active, sent_today, sent_this_month, last_sent_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		m.ID,
		m.Address,
		m.Credential,
		m.Host,
		m.Port,
		m.DailyLimit,
		m.MonthlyLimit,
		m.IsActive,
		m.SentToday,
		m.SentThisMonth,
		m.LastSentAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if isDuplicateKey(err) {
		return storage.ErrMailboxExists
	}
	return err
}

// mailboxColumns SELECT 列清单，与 scanMailbox 保持一致
const mailboxColumns = `id, address, credential, host, port, daily_limit, monthly_limit,
	is_active, sent_today, sent_this_month, last_sent_at, created_at, updated_at`

func scanMailbox(row interface{ Scan(...interface{}) error }) (*domain.Mailbox, error) {
	var m domain.Mailbox
	var lastSentAt sql.NullTime

	err := row.Scan(
		&m.ID,
		&m.Address,
		&m.Credential,
		&m.Host,
		&m.Port,
		&m.DailyLimit,
		&m.MonthlyLimit,
		&m.IsActive,
		&m.SentToday,
		&m.SentThisMonth,
		&lastSentAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSentAt.Valid {
		m.LastSentAt = &lastSentAt.Time
	}
	return &m, nil
}

// GetMailbox 根据 ID 获取邮箱
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	query := s.rebind(fmt.Sprintf(`SELECT %s FROM mailboxes WHERE id = ?`, mailboxColumns))
	m, err := scanMailbox(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrMailboxNotFound
	}
	return m, err
}

// GetMailboxByAddress 根据地址获取邮箱
func (s *Store) GetMailboxByAddress(address string) (*domain.Mailbox, error) {
	query := s.rebind(fmt.Sprintf(`SELECT %s FROM mailboxes WHERE LOWER(address) = LOWER(?)`, mailboxColumns))
	m, err := scanMailbox(s.db.QueryRow(query, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrMailboxNotFound
	}
	return m, err
}

// ListMailboxes 返回全部邮箱，按创建时间排序
func (s *Store) ListMailboxes() ([]domain.Mailbox, error) {
	query := s.rebind(fmt.Sprintf(`SELECT %s FROM mailboxes ORDER BY created_at`, mailboxColumns))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Mailbox
	for rows.Next() {
		m, err := scanMailbox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// SetMailboxActive 切换激活标记
func (s *Store) SetMailboxActive(id string, active bool) error {
	query := s.rebind(`UPDATE mailboxes SET is_active = ?, updated_at = ? WHERE id = ?`)
	res, err := s.db.Exec(query, active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMailboxNotFound
	}
	return nil
}

// IncrementSendCounters 单条条件 UPDATE 完成惰性归零与配额递增
//
// 归零判断折算成与当天零点/当月一号的时间比较，由调用方
// 传入的 now 推导，避免依赖各数据库方言的日期函数。
// WHERE 子句在数据库侧重做配额校验，两个并发事务不可能
// 同时通过仅剩一个单位配额的检查。
func (s *Store) IncrementSendCounters(id string, now time.Time) error {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	query := s.rebind(`
		UPDATE mailboxes SET
			sent_today      = CASE WHEN last_sent_at IS NULL OR last_sent_at < ? THEN 1 ELSE sent_today + 1 END,
			sent_this_month = CASE WHEN last_sent_at IS NULL OR last_sent_at < ? THEN 1 ELSE sent_this_month + 1 END,
			last_sent_at    = ?,
			updated_at      = ?
		WHERE id = ?
		  AND (CASE WHEN last_sent_at IS NULL OR last_sent_at < ? THEN 0 ELSE sent_today END) < daily_limit
		  AND (CASE WHEN last_sent_at IS NULL OR last_sent_at < ? THEN 0 ELSE sent_this_month END) < monthly_limit
	`)
	res, err := s.db.Exec(query,
		startOfDay,
		startOfMonth,
		now,
		now,
		id,
		startOfDay,
		startOfMonth,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// 行未更新：区分邮箱不存在与配额耗尽
	if _, err := s.GetMailbox(id); err != nil {
		return err
	}
	return storage.ErrQuotaExceeded
}

// AppendSendAttempt 追加一条发送审计记录
func (s *Store) AppendSendAttempt(a *domain.SendAttempt) error {
	query := s.rebind(`
		INSERT INTO send_attempts (id, mailbox_id, outcome, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query, a.ID, a.MailboxID, a.Outcome, a.Reason, a.CreatedAt)
	return err
}

// ListSendAttemptsSince 返回指定时间之后的全部审计记录
func (s *Store) ListSendAttemptsSince(since time.Time) ([]domain.SendAttempt, error) {
	query := s.rebind(`
		SELECT id, mailbox_id, outcome, reason, created_at
		FROM send_attempts
		WHERE created_at >= ?
		ORDER BY created_at
	`)
	rows, err := s.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SendAttempt
	for rows.Next() {
		var a domain.SendAttempt
		if err := rows.Scan(&a.ID, &a.MailboxID, &a.Outcome, &a.Reason, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
