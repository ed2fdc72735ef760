package domain

import (
	"time"
)

// 默认发送配额，仅在创建邮箱且调用方未指定时生效
const (
	DefaultDailyLimit   = 100
	DefaultMonthlyLimit = 15000
)

// MailboxState 邮箱的展示状态
type MailboxState string

const (
	MailboxAvailable MailboxState = "available" // 可用：激活且仍有配额余量
	MailboxLimited   MailboxState = "limited"   // 受限：激活但当日或当月配额已耗尽
	MailboxInactive  MailboxState = "inactive"  // 停用：被管理员手动下线
)

// Mailbox 表示一个出站邮件账号的业务实体
//
// 每个邮箱独立维护日/月发送配额。计数器采用惰性归零：
// 不依赖后台定时任务，而是在每次读写时用 LastSentAt 与当前
// 时间比较来判断计数是否已过期。邮箱从不物理删除，管理员
// 通过 IsActive 软停用。
type Mailbox struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Address       string     `json:"address" gorm:"type:varchar(255);uniqueIndex;not null"`
	Credential    string     `json:"-" gorm:"type:varchar(255);not null"` // SMTP 授权凭据，不返回给前端
	Host          string     `json:"host" gorm:"type:varchar(255);not null"`
	Port          int        `json:"port" gorm:"not null"`
	DailyLimit    int        `json:"dailyLimit" gorm:"not null"`
	MonthlyLimit  int        `json:"monthlyLimit" gorm:"not null"`
	IsActive      bool       `json:"isActive" gorm:"default:true;index"`
	SentToday     int        `json:"sentToday" gorm:"default:0"`
	SentThisMonth int        `json:"sentThisMonth" gorm:"default:0"`
	LastSentAt    *time.Time `json:"lastSentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// EffectiveDailyCount 返回按惰性归零规则折算后的当日已发送数
//
// LastSentAt 所在日历日严格早于 now 所在日时，存储中的计数视为 0。
func (m *Mailbox) EffectiveDailyCount(now time.Time) int {
	if m.LastSentAt == nil {
		return 0
	}
	ly, lm, ld := m.LastSentAt.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	if ly != ny || lm != nm || ld != nd {
		return 0
	}
	return m.SentToday
}

// EffectiveMonthlyCount 返回按惰性归零规则折算后的当月已发送数
func (m *Mailbox) EffectiveMonthlyCount(now time.Time) int {
	if m.LastSentAt == nil {
		return 0
	}
	ly, lm, _ := m.LastSentAt.In(now.Location()).Date()
	ny, nm, _ := now.Date()
	if ly != ny || lm != nm {
		return 0
	}
	return m.SentThisMonth
}

// DailyRemaining 当日剩余配额（折算后）
func (m *Mailbox) DailyRemaining(now time.Time) int {
	return m.DailyLimit - m.EffectiveDailyCount(now)
}

// MonthlyRemaining 当月剩余配额（折算后）
func (m *Mailbox) MonthlyRemaining(now time.Time) int {
	return m.MonthlyLimit - m.EffectiveMonthlyCount(now)
}

// Eligible 判断邮箱当前是否可被选中发送
func (m *Mailbox) Eligible(now time.Time) bool {
	return m.IsActive && m.DailyRemaining(now) > 0 && m.MonthlyRemaining(now) > 0
}

// State 计算邮箱的展示状态，只读，不落库
func (m *Mailbox) State(now time.Time) MailboxState {
	if !m.IsActive {
		return MailboxInactive
	}
	if m.DailyRemaining(now) <= 0 || m.MonthlyRemaining(now) <= 0 {
		return MailboxLimited
	}
	return MailboxAvailable
}

// MailboxStatus 管理界面展示用的邮箱状态快照
type MailboxStatus struct {
	Mailbox
	DailyRemaining   int          `json:"dailyRemaining"`
	MonthlyRemaining int          `json:"monthlyRemaining"`
	State            MailboxState `json:"state"`
}

// NewMailboxStatus 基于当前时间生成状态快照
//
// 快照里的计数同样按惰性归零规则折算，保证已发送数与剩余量
// 对同一时刻自洽。
func NewMailboxStatus(m Mailbox, now time.Time) MailboxStatus {
	dr := m.DailyRemaining(now)
	mr := m.MonthlyRemaining(now)
	if dr < 0 {
		dr = 0
	}
	if mr < 0 {
		mr = 0
	}

	state := m.State(now)
	m.SentToday = m.EffectiveDailyCount(now)
	m.SentThisMonth = m.EffectiveMonthlyCount(now)

	return MailboxStatus{
		Mailbox:          m,
		DailyRemaining:   dr,
		MonthlyRemaining: mr,
		State:            state,
	}
}
