package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 密码重置指标
	ResetRequestsTotal   prometheus.Counter
	ResetEmailsSent      prometheus.Counter
	ResetEmailsFailed    prometheus.Counter
	ResetTokensConsumed  prometheus.Counter
	MailboxPoolExhausted prometheus.Counter

	// 邮箱池指标
	MailboxesActive         prometheus.Gauge
	MailboxDailyRemaining   *prometheus.GaugeVec
	MailboxMonthlyRemaining *prometheus.GaugeVec

	// 反馈指标
	FeedbackSubmitted prometheus.Counter
	FeedbackRejected  *prometheus.CounterVec

	// 系统指标
	SystemUptime        prometheus.Gauge
	DatabaseConnections prometheus.Gauge
	RedisConnections    prometheus.Gauge

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	// 限流指标
	RateLimitBlocks *prometheus.CounterVec
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		// HTTP 请求指标
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusfeedback_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusfeedback_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusfeedback_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusfeedback_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		// 密码重置指标
		ResetRequestsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_reset_requests_total",
				Help: "Total number of password reset requests accepted",
			},
		),

		ResetEmailsSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_reset_emails_sent_total",
				Help: "Total number of password reset emails delivered",
			},
		),

		ResetEmailsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_reset_emails_failed_total",
				Help: "Total number of password reset emails that failed to send",
			},
		),

		ResetTokensConsumed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_reset_tokens_consumed_total",
				Help: "Total number of reset tokens successfully consumed",
			},
		),

		MailboxPoolExhausted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_mailbox_pool_exhausted_total",
				Help: "Times no outbound mailbox had quota left for a reset email",
			},
		),

		// 邮箱池指标
		MailboxesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "campusfeedback_mailboxes_active",
				Help: "Number of active outbound mailboxes in the pool",
			},
		),

		MailboxDailyRemaining: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "campusfeedback_mailbox_daily_remaining",
				Help: "Remaining daily quota per outbound mailbox",
			},
			[]string{"address"},
		),

		MailboxMonthlyRemaining: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "campusfeedback_mailbox_monthly_remaining",
				Help: "Remaining monthly quota per outbound mailbox",
			},
			[]string{"address"},
		),

		// 反馈指标
		FeedbackSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_feedback_submitted_total",
				Help: "Total number of feedback submissions stored",
			},
		),

		FeedbackRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusfeedback_feedback_rejected_total",
				Help: "Total number of rejected feedback submissions",
			},
			[]string{"reason"},
		),

		// 系统指标
		SystemUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "campusfeedback_system_uptime_seconds",
				Help: "System uptime in seconds",
			},
		),

		DatabaseConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "campusfeedback_database_connections",
				Help: "Number of database connections",
			},
		),

		RedisConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "campusfeedback_redis_connections",
				Help: "Number of Redis connections",
			},
		),

		// 错误指标
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusfeedback_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusfeedback_panics_total",
				Help: "Total number of panics",
			},
		),

		// 限流指标
		RateLimitBlocks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusfeedback_rate_limit_blocks_total",
				Help: "Total number of rate limit blocks",
			},
			[]string{"type"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordResetRequest 记录一次被接受的密码重置请求
func (m *Metrics) RecordResetRequest() {
	m.ResetRequestsTotal.Inc()
}

// RecordResetEmailSent 记录一封投递成功的重置邮件
func (m *Metrics) RecordResetEmailSent() {
	m.ResetEmailsSent.Inc()
}

// RecordResetEmailFailed 记录一封投递失败的重置邮件
func (m *Metrics) RecordResetEmailFailed() {
	m.ResetEmailsFailed.Inc()
}

// RecordResetTokenConsumed 记录一次成功的令牌消费
func (m *Metrics) RecordResetTokenConsumed() {
	m.ResetTokensConsumed.Inc()
}

// RecordMailboxPoolExhausted 记录一次邮箱池耗尽
func (m *Metrics) RecordMailboxPoolExhausted() {
	m.MailboxPoolExhausted.Inc()
}

// RecordFeedbackSubmitted 记录一次反馈提交
func (m *Metrics) RecordFeedbackSubmitted() {
	m.FeedbackSubmitted.Inc()
}

// RecordFeedbackRejected 记录一次被拒绝的反馈提交
func (m *Metrics) RecordFeedbackRejected(reason string) {
	m.FeedbackRejected.WithLabelValues(reason).Inc()
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRateLimitBlock 记录限流阻止
func (m *Metrics) RecordRateLimitBlock(limitType string) {
	m.RateLimitBlocks.WithLabelValues(limitType).Inc()
}

// UpdateMailboxesActive 更新活跃邮箱数
func (m *Metrics) UpdateMailboxesActive(count int) {
	m.MailboxesActive.Set(float64(count))
}

// UpdateMailboxRemaining 更新单个邮箱的剩余配额
func (m *Metrics) UpdateMailboxRemaining(address string, daily, monthly int) {
	m.MailboxDailyRemaining.WithLabelValues(address).Set(float64(daily))
	m.MailboxMonthlyRemaining.WithLabelValues(address).Set(float64(monthly))
}

// UpdateSystemUptime 更新系统运行时间
func (m *Metrics) UpdateSystemUptime(uptime time.Duration) {
	m.SystemUptime.Set(uptime.Seconds())
}

// UpdateDatabaseConnections 更新数据库连接数
func (m *Metrics) UpdateDatabaseConnections(count int) {
	m.DatabaseConnections.Set(float64(count))
}

// UpdateRedisConnections 更新 Redis 连接数
func (m *Metrics) UpdateRedisConnections(count int) {
	m.RedisConnections.Set(float64(count))
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
