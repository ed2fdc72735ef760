package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

var (
	// ErrMailboxExists 邮箱地址已存在
	ErrMailboxExists = errors.New("mailbox address already exists")
	// ErrMailboxNotFound 邮箱不存在
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrNoMailboxAvailable 没有可用邮箱：全部停用或配额耗尽。
	// 调用方必须把它当作可重试/需告警的状况，不得吞成成功
	ErrNoMailboxAvailable = errors.New("no mailbox available")
)

// MailboxService 出站邮箱池的分配器
//
// 负责在日/月配额约束下为下一封密码重置邮件挑选账号、
// 记录发送结果，并向管理端暴露状态与统计。配额的
// 检查-递增原子性由存储层保证，本服务不做先读后写。
type MailboxService struct {
	repo storage.MailboxRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewMailboxService 创建邮箱分配服务
func NewMailboxService(repo storage.MailboxRepository, log *zap.Logger) *MailboxService {
	return &MailboxService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// AddMailboxInput 定义创建邮箱所需的输入
type AddMailboxInput struct {
	Address      string
	Credential   string
	Host         string
	Port         int
	DailyLimit   int // <=0 时使用默认值 100
	MonthlyLimit int // <=0 时使用默认值 15000
}

// Add 向邮箱池添加一个出站账号
//
// 地址在池内唯一，冲突返回 ErrMailboxExists；计数从零开始，
// 新账号默认激活。
func (s *MailboxService) Add(input AddMailboxInput) (*domain.Mailbox, error) {
	if err := domain.ValidateEmail(input.Address); err != nil {
		return nil, err
	}
	if err := domain.ValidatePort(input.Port); err != nil {
		return nil, err
	}

	dailyLimit := input.DailyLimit
	if dailyLimit <= 0 {
		dailyLimit = domain.DefaultDailyLimit
	}
	monthlyLimit := input.MonthlyLimit
	if monthlyLimit <= 0 {
		monthlyLimit = domain.DefaultMonthlyLimit
	}

	now := s.now().UTC()
	mailbox := &domain.Mailbox{
		ID:           uuid.NewString(),
		Address:      input.Address,
		Credential:   input.Credential,
		Host:         input.Host,
		Port:         input.Port,
		DailyLimit:   dailyLimit,
		MonthlyLimit: monthlyLimit,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.SaveMailbox(mailbox); err != nil {
		if errors.Is(err, storage.ErrMailboxExists) {
			return nil, ErrMailboxExists
		}
		return nil, fmt.Errorf("save mailbox: %w", err)
	}

	s.log.Info("mailbox added to pool",
		zap.String("mailbox_id", mailbox.ID),
		zap.String("address", mailbox.Address),
		zap.Int("daily_limit", dailyLimit),
		zap.Int("monthly_limit", monthlyLimit),
	)
	return mailbox, nil
}

// SetActive 切换邮箱激活状态；停用后保留历史计数，不参与选择
func (s *MailboxService) SetActive(id string, active bool) error {
	if err := s.repo.SetMailboxActive(id, active); err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return ErrMailboxNotFound
		}
		return fmt.Errorf("set mailbox active: %w", err)
	}
	s.log.Info("mailbox active flag changed",
		zap.String("mailbox_id", id),
		zap.Bool("active", active),
	)
	return nil
}

// SelectForSend 为下一封邮件挑选一个可用邮箱
//
// 只考虑激活且按惰性归零规则折算后仍有日/月余量的邮箱；
// 同样合格的邮箱按 last_sent_at 最久未用优先（从未发送排最前），
// 在池内形成轮转负载均衡。没有候选时返回 ErrNoMailboxAvailable。
func (s *MailboxService) SelectForSend() (*domain.Mailbox, error) {
	mailboxes, err := s.repo.ListMailboxes()
	if err != nil {
		return nil, fmt.Errorf("list mailboxes: %w", err)
	}

	now := s.now().UTC()
	eligible := mailboxes[:0]
	for _, m := range mailboxes {
		if m.Eligible(now) {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoMailboxAvailable
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].LastSentAt, eligible[j].LastSentAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	selected := eligible[0]
	return &selected, nil
}

// RecordOutcome 记录一次发送尝试的结果
//
// 成功时在存储层的单个原子步骤内递增日/月计数并推进
// last_sent_at；失败不消耗配额。两种结果都追加一条审计记录。
func (s *MailboxService) RecordOutcome(id string, outcome domain.SendOutcome, reason string) error {
	now := s.now().UTC()

	if outcome == domain.OutcomeSent {
		err := s.repo.IncrementSendCounters(id, now)
		switch {
		case errors.Is(err, storage.ErrMailboxNotFound):
			return ErrMailboxNotFound
		case errors.Is(err, storage.ErrQuotaExceeded):
			// 邮件已经发出，配额却已饱和：计数保持在上限，
			// 只能记录并示警，供运维核对选择与记账间的竞争窗口
			s.log.Warn("send recorded beyond quota, counters saturated",
				zap.String("mailbox_id", id),
			)
		case err != nil:
			return fmt.Errorf("increment send counters: %w", err)
		}
	}

	attempt := &domain.SendAttempt{
		ID:        uuid.NewString(),
		MailboxID: id,
		Outcome:   outcome,
		Reason:    reason,
		CreatedAt: now,
	}
	if err := s.repo.AppendSendAttempt(attempt); err != nil {
		if errors.Is(err, storage.ErrMailboxNotFound) {
			return ErrMailboxNotFound
		}
		return fmt.Errorf("append send attempt: %w", err)
	}

	if outcome == domain.OutcomeFailed {
		s.log.Warn("send attempt failed",
			zap.String("mailbox_id", id),
			zap.String("reason", reason),
		)
	}
	return nil
}

// Status 返回全部邮箱的状态快照，只读，不落库
func (s *MailboxService) Status() ([]domain.MailboxStatus, error) {
	mailboxes, err := s.repo.ListMailboxes()
	if err != nil {
		return nil, fmt.Errorf("list mailboxes: %w", err)
	}

	now := s.now().UTC()
	out := make([]domain.MailboxStatus, 0, len(mailboxes))
	for _, m := range mailboxes {
		out = append(out, domain.NewMailboxStatus(m, now))
	}
	return out, nil
}

// EmailStats 返回最近 lastNDays 天按日聚合的发送统计，缺数据的日期补零
func (s *MailboxService) EmailStats(lastNDays int) ([]domain.DailyEmailStat, error) {
	if lastNDays <= 0 {
		lastNDays = 7
	}

	now := s.now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := startOfToday.AddDate(0, 0, -(lastNDays - 1))

	attempts, err := s.repo.ListSendAttemptsSince(since)
	if err != nil {
		return nil, fmt.Errorf("list send attempts: %w", err)
	}

	byDate := make(map[string]*domain.DailyEmailStat, lastNDays)
	stats := make([]domain.DailyEmailStat, lastNDays)
	for i := 0; i < lastNDays; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		stats[i] = domain.DailyEmailStat{Date: date}
		byDate[date] = &stats[i]
	}

	for _, a := range attempts {
		stat, ok := byDate[a.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		stat.TotalEmails++
		if a.Outcome == domain.OutcomeSent {
			stat.SentEmails++
		} else {
			stat.FailedEmails++
		}
	}
	return stats, nil
}
