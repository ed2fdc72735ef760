package domain

import "time"

// SendOutcome 单次发送尝试的结果
type SendOutcome string

const (
	OutcomeSent   SendOutcome = "sent"
	OutcomeFailed SendOutcome = "failed"
)

// SendAttempt 表示一次出站邮件尝试的审计记录
//
// 每次尝试写入一条，成功或失败各记一次，写入后不可变，
// 仅用于读侧按天聚合统计。
type SendAttempt struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MailboxID string      `json:"mailboxId" gorm:"type:varchar(36);index;not null"`
	Outcome   SendOutcome `json:"outcome" gorm:"type:varchar(10);index;not null"`
	Reason    string      `json:"reason,omitempty" gorm:"type:varchar(500)"`
	CreatedAt time.Time   `json:"createdAt" gorm:"index"`
}

// DailyEmailStat 按日历日聚合的发送统计
type DailyEmailStat struct {
	Date         string `json:"date"` // 格式 2006-01-02
	TotalEmails  int    `json:"totalEmails"`
	SentEmails   int    `json:"sentEmails"`
	FailedEmails int    `json:"failedEmails"`
}
