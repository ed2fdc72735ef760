package mailer

import (
	"crypto/tls"
	"fmt"

	"go.uber.org/zap"
	mail "gopkg.in/gomail.v2"

	"campusfeedback/backend/internal/domain"
)

// Message 一封待发送的邮件
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender 出站邮件传输客户端
//
// 调用方（分配器工作流）决定用哪个邮箱发送并记录结果，
// Sender 只负责一次 SMTP 投递。
type Sender interface {
	Send(from *domain.Mailbox, msg *Message) error
}

// SMTPSender 基于 gomail 的 SMTP 实现
type SMTPSender struct {
	skipTLSVerify bool
	log           *zap.Logger
}

// NewSMTPSender 创建 SMTP 发送客户端
func NewSMTPSender(skipTLSVerify bool, log *zap.Logger) *SMTPSender {
	if skipTLSVerify {
		log.Warn("TLS certificate verification is disabled for outbound mail")
	}
	return &SMTPSender{
		skipTLSVerify: skipTLSVerify,
		log:           log,
	}
}

// Send 使用指定邮箱的凭据投递一封邮件
func (s *SMTPSender) Send(from *domain.Mailbox, msg *Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", from.Address)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	d := mail.NewDialer(from.Host, from.Port, from.Address, from.Credential)
	d.TLSConfig = &tls.Config{
		ServerName:         from.Host,
		InsecureSkipVerify: s.skipTLSVerify,
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("could not send email via %s: %w", from.Host, err)
	}

	s.log.Debug("email delivered",
		zap.String("mailbox", from.Address),
		zap.String("to", msg.To),
	)
	return nil
}
