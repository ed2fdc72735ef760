package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/auth"
	"campusfeedback/backend/internal/cache"
	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/mailer"
	"campusfeedback/backend/internal/monitoring"
	"campusfeedback/backend/internal/pool"
	"campusfeedback/backend/internal/storage/memory"
)

// Prometheus 指标注册到默认注册表，整个测试进程只能创建一次
var testMetrics = monitoring.NewMetrics()

// fakeSender 记录投递调用的假 SMTP 客户端
type fakeSender struct {
	mu       sync.Mutex
	sent     []string // 收件人
	failWith error
}

func (f *fakeSender) Send(from *domain.Mailbox, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, msg.To)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// recordingTokenStore 包装令牌存储并记录最近保存的令牌
type recordingTokenStore struct {
	*cache.TokenStore
	mu        sync.Mutex
	lastToken string
}

func (r *recordingTokenStore) SaveResetToken(token, userID string, ttl time.Duration) error {
	r.mu.Lock()
	r.lastToken = token
	r.mu.Unlock()
	return r.TokenStore.SaveResetToken(token, userID, ttl)
}

func (r *recordingTokenStore) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastToken
}

type resetFixture struct {
	svc       *PasswordResetService
	store     *memory.Store
	mailboxes *MailboxService
	sender    *fakeSender
	tokens    *recordingTokenStore
	authSvc   *auth.Service
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	store := memory.NewStore()
	log := zap.NewNop()

	tokenStore := cache.NewTokenStore(30 * time.Minute)
	t.Cleanup(tokenStore.Close)
	tokens := &recordingTokenStore{TokenStore: tokenStore}

	mailboxes := NewMailboxService(store, log)
	mailboxes.now = func() time.Time { return fixedNow }

	sender := &fakeSender{}
	authSvc := auth.NewService(store)
	workers := pool.NewWorkerPool(1, 16, log)

	svc := NewPasswordResetService(
		store, tokens, mailboxes, sender, authSvc, workers, testMetrics,
		PasswordResetConfig{
			TokenTTL:          30 * time.Minute,
			ResetBaseURL:      "https://feedback.college.edu/reset",
			RequestsPerMinute: 3,
		},
		log,
	)

	return &resetFixture{
		svc:       svc,
		store:     store,
		mailboxes: mailboxes,
		sender:    sender,
		tokens:    tokens,
		authSvc:   authSvc,
	}
}

func (f *resetFixture) createUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	user, err := f.authSvc.CreateAdmin(auth.CreateAdminInput{
		Email:    email,
		Username: email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	return user
}

func TestPasswordResetRequest(t *testing.T) {
	t.Run("同一 IP 超过限流阈值被拒绝", func(t *testing.T) {
		f := newResetFixture(t)

		for i := 0; i < 3; i++ {
			assert.NoError(t, f.svc.Request("10.0.0.1", "nobody@college.edu"))
		}
		err := f.svc.Request("10.0.0.1", "nobody@college.edu")
		assert.ErrorIs(t, err, ErrTooManyRequests)

		// 其它 IP 不受影响
		assert.NoError(t, f.svc.Request("10.0.0.2", "nobody@college.edu"))
	})

	t.Run("邮箱不存在时返回同样的成功响应且不生成令牌", func(t *testing.T) {
		f := newResetFixture(t)

		require.NoError(t, f.svc.Request("10.0.0.1", "ghost@college.edu"))
		assert.Empty(t, f.tokens.last())
	})

	t.Run("已知邮箱生成一次性令牌", func(t *testing.T) {
		f := newResetFixture(t)
		f.createUser(t, "admin@college.edu", "oldpassword")

		require.NoError(t, f.svc.Request("10.0.0.1", "admin@college.edu"))
		assert.NotEmpty(t, f.tokens.last())
	})
}

func TestPasswordResetDeliver(t *testing.T) {
	t.Run("投递成功消耗所选邮箱的配额并留痕", func(t *testing.T) {
		f := newResetFixture(t)
		m := seedMailbox(t, f.store, nil)

		f.svc.deliver("user-1", "someone@college.edu", "token-1")

		assert.Equal(t, 1, f.sender.sentCount())
		got, err := f.store.GetMailbox(m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SentToday)
		assert.Equal(t, 1, got.SentThisMonth)
	})

	t.Run("投递失败不消耗配额但记录失败", func(t *testing.T) {
		f := newResetFixture(t)
		m := seedMailbox(t, f.store, nil)
		f.sender.failWith = errors.New("connection refused")

		f.svc.deliver("user-1", "someone@college.edu", "token-1")

		got, err := f.store.GetMailbox(m.ID)
		require.NoError(t, err)
		assert.Zero(t, got.SentToday)

		attempts, err := f.store.ListSendAttemptsSince(fixedNow.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, domain.OutcomeFailed, attempts[0].Outcome)
	})

	t.Run("邮箱池耗尽时不投递也不崩溃", func(t *testing.T) {
		f := newResetFixture(t)

		f.svc.deliver("user-1", "someone@college.edu", "token-1")

		assert.Zero(t, f.sender.sentCount())
	})
}

func TestPasswordResetConfirm(t *testing.T) {
	t.Run("令牌消费后新密码生效", func(t *testing.T) {
		f := newResetFixture(t)
		f.createUser(t, "admin@college.edu", "oldpassword")

		require.NoError(t, f.svc.Request("10.0.0.1", "admin@college.edu"))
		token := f.tokens.last()
		require.NotEmpty(t, token)

		require.NoError(t, f.svc.Confirm(token, "brand-new-password"))

		_, err := f.authSvc.Login("admin@college.edu", "brand-new-password")
		assert.NoError(t, err)
		_, err = f.authSvc.Login("admin@college.edu", "oldpassword")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("令牌只能使用一次", func(t *testing.T) {
		f := newResetFixture(t)
		f.createUser(t, "admin@college.edu", "oldpassword")

		require.NoError(t, f.svc.Request("10.0.0.1", "admin@college.edu"))
		token := f.tokens.last()

		require.NoError(t, f.svc.Confirm(token, "brand-new-password"))
		err := f.svc.Confirm(token, "another-password")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("无效令牌被拒绝", func(t *testing.T) {
		f := newResetFixture(t)

		err := f.svc.Confirm("no-such-token", "whatever-password")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("过短的新密码被拒绝", func(t *testing.T) {
		f := newResetFixture(t)
		f.createUser(t, "admin@college.edu", "oldpassword")

		require.NoError(t, f.svc.Request("10.0.0.1", "admin@college.edu"))
		token := f.tokens.last()

		err := f.svc.Confirm(token, "short")
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	})
}
