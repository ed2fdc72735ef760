package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campusfeedback/backend/internal/auth"
	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/mailer"
	"campusfeedback/backend/internal/monitoring"
	"campusfeedback/backend/internal/pool"
	"campusfeedback/backend/internal/storage"
)

var (
	// ErrTokenInvalid 重置令牌无效或已过期
	ErrTokenInvalid = errors.New("reset token invalid or expired")
	// ErrTooManyRequests 请求过于频繁
	ErrTooManyRequests = errors.New("too many reset requests")
)

// PasswordResetConfig 密码重置服务配置
type PasswordResetConfig struct {
	// TokenTTL 令牌有效期
	TokenTTL time.Duration
	// ResetBaseURL 重置页面地址，令牌以查询参数拼接
	ResetBaseURL string
	// RequestsPerMinute 单个 IP 每分钟允许的请求数
	RequestsPerMinute int
}

// PasswordResetService 密码重置工作流
//
// 请求侧生成一次性令牌并异步投递邮件；确认侧消费令牌并改写
// 密码。无论邮箱是否存在，请求侧对外都返回同样的确认响应，
// 不暴露账号存在性。
type PasswordResetService struct {
	users     storage.UserRepository
	tokens    storage.ResetTokenStore
	mailboxes *MailboxService
	sender    mailer.Sender
	authSvc   *auth.Service
	workers   *pool.WorkerPool
	metrics   *monitoring.Metrics
	limiter   *keyLimiter
	log       *zap.Logger

	tokenTTL     time.Duration
	resetBaseURL string
}

// NewPasswordResetService 创建密码重置服务
func NewPasswordResetService(
	users storage.UserRepository,
	tokens storage.ResetTokenStore,
	mailboxes *MailboxService,
	sender mailer.Sender,
	authSvc *auth.Service,
	workers *pool.WorkerPool,
	metrics *monitoring.Metrics,
	cfg PasswordResetConfig,
	log *zap.Logger,
) *PasswordResetService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 3
	}

	return &PasswordResetService{
		users:        users,
		tokens:       tokens,
		mailboxes:    mailboxes,
		sender:       sender,
		authSvc:      authSvc,
		workers:      workers,
		metrics:      metrics,
		limiter:      newKeyLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute),
		log:          log,
		tokenTTL:     cfg.TokenTTL,
		resetBaseURL: strings.TrimRight(cfg.ResetBaseURL, "/"),
	}
}

// StartLimiterCleanup 启动限流桶的定期回收
func (s *PasswordResetService) StartLimiterCleanup(stop <-chan struct{}) {
	s.limiter.StartCleanup(10*time.Minute, 30*time.Minute, stop)
}

// Request 受理一次密码重置请求
//
// 限流命中返回 ErrTooManyRequests；除此之外永远返回 nil，
// 邮箱不存在、邮箱池耗尽、投递失败都只体现在日志与指标里，
// 不反馈给请求方。
func (s *PasswordResetService) Request(clientIP, email string) error {
	if !s.limiter.Allow(clientIP) {
		s.metrics.RecordRateLimitBlock("password_reset")
		s.log.Warn("reset request rate limited", zap.String("ip", clientIP))
		return ErrTooManyRequests
	}

	s.metrics.RecordResetRequest()

	email = strings.ToLower(strings.TrimSpace(email))
	if domain.ValidateEmail(email) != nil {
		return nil
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			s.log.Error("reset request user lookup failed", zap.Error(err))
			s.metrics.RecordError("user_lookup", "password_reset")
		}
		return nil
	}
	if !user.IsActive {
		return nil
	}

	token := uuid.NewString()
	if err := s.tokens.SaveResetToken(token, user.ID, s.tokenTTL); err != nil {
		s.log.Error("failed to save reset token", zap.Error(err))
		s.metrics.RecordError("token_save", "password_reset")
		return nil
	}

	userID, to := user.ID, user.Email
	if !s.workers.TrySubmit(func() { s.deliver(userID, to, token) }) {
		// 队列打满说明发件远落后于请求，丢弃并示警
		s.log.Error("reset email queue is full, dropping delivery",
			zap.String("user_id", userID),
		)
		s.metrics.RecordError("queue_full", "password_reset")
	}
	return nil
}

// deliver 在工作协程内完成一次重置邮件投递
//
// 先向邮箱池申请一个有余量的发件账号，投递后把结果记回池里。
// 失败不消耗配额，成功在存储层原子记账。
func (s *PasswordResetService) deliver(userID, to, token string) {
	mailbox, err := s.mailboxes.SelectForSend()
	if err != nil {
		if errors.Is(err, ErrNoMailboxAvailable) {
			s.metrics.RecordMailboxPoolExhausted()
			s.log.Error("mailbox pool exhausted, reset email not sent",
				zap.String("user_id", userID),
			)
		} else {
			s.log.Error("mailbox selection failed", zap.Error(err))
			s.metrics.RecordError("mailbox_select", "password_reset")
		}
		return
	}

	msg := &mailer.Message{
		To:       to,
		Subject:  "密码重置确认",
		HTMLBody: s.renderBody(token),
	}

	if err := s.sender.Send(mailbox, msg); err != nil {
		s.metrics.RecordResetEmailFailed()
		if recErr := s.mailboxes.RecordOutcome(mailbox.ID, domain.OutcomeFailed, err.Error()); recErr != nil {
			s.log.Error("failed to record send failure", zap.Error(recErr))
		}
		s.log.Warn("reset email delivery failed",
			zap.String("mailbox", mailbox.Address),
			zap.Error(err),
		)
		return
	}

	s.metrics.RecordResetEmailSent()
	if err := s.mailboxes.RecordOutcome(mailbox.ID, domain.OutcomeSent, ""); err != nil {
		s.log.Error("failed to record send success", zap.Error(err))
	}

	s.log.Info("reset email delivered",
		zap.String("user_id", userID),
		zap.String("mailbox", mailbox.Address),
	)
}

// Confirm 消费令牌并改写密码
//
// 令牌一次性有效，消费后立即失效；新密码校验失败时令牌同样
// 已被消费，需要重新发起请求。
func (s *PasswordResetService) Confirm(token, newPassword string) error {
	userID, err := s.tokens.ConsumeResetToken(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	if err := s.authSvc.SetPassword(userID, newPassword); err != nil {
		return err
	}

	s.metrics.RecordResetTokenConsumed()
	s.log.Info("password reset completed", zap.String("user_id", userID))
	return nil
}

// renderBody 渲染重置邮件正文
func (s *PasswordResetService) renderBody(token string) string {
	link := fmt.Sprintf("%s?token=%s", s.resetBaseURL, token)
	return fmt.Sprintf(`<html><body>
<p>我们收到了重置您账号密码的请求。</p>
<p>请在 %d 分钟内点击下面的链接完成重置：</p>
<p><a href="%s">%s</a></p>
<p>如果这不是您本人的操作，请忽略本邮件，密码不会被更改。</p>
</body></html>`, int(s.tokenTTL.Minutes()), link, link)
}
