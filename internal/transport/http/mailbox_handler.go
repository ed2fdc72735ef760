package httptransport

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/service"
)

// MailboxHandler 处理出站邮箱池的管理端点
//
// 仅超级管理员可访问，发件凭据只进不出。
type MailboxHandler struct {
	mailboxes *service.MailboxService
	log       *zap.Logger
}

// NewMailboxHandler 创建邮箱池处理器
func NewMailboxHandler(mailboxes *service.MailboxService, log *zap.Logger) *MailboxHandler {
	return &MailboxHandler{
		mailboxes: mailboxes,
		log:       log,
	}
}

type createMailboxRequest struct {
	Address      string `json:"address" binding:"required"`
	Credential   string `json:"credential" binding:"required"`
	Host         string `json:"host" binding:"required"`
	Port         int    `json:"port" binding:"required"`
	DailyLimit   int    `json:"dailyLimit"`
	MonthlyLimit int    `json:"monthlyLimit"`
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Create 向邮箱池添加一个发件账号
func (h *MailboxHandler) Create(c *gin.Context) {
	var req createMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	mailbox, err := h.mailboxes.Add(service.AddMailboxInput{
		Address:      req.Address,
		Credential:   req.Credential,
		Host:         req.Host,
		Port:         req.Port,
		DailyLimit:   req.DailyLimit,
		MonthlyLimit: req.MonthlyLimit,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMailboxExists):
			Conflict(c, GetErrorMessage(service.ErrMailboxExists))
		case errors.Is(err, domain.ErrInvalidEmail),
			errors.Is(err, domain.ErrEmailTooLong),
			errors.Is(err, domain.ErrInvalidPort):
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to add mailbox", zap.Error(err))
			InternalError(c, MsgMailboxCreateFailed)
		}
		return
	}

	Created(c, mailbox)
}

// Status 返回全部邮箱的状态快照
func (h *MailboxHandler) Status(c *gin.Context) {
	statuses, err := h.mailboxes.Status()
	if err != nil {
		h.log.Error("failed to load mailbox status", zap.Error(err))
		InternalError(c, MsgMailboxStatusFailed)
		return
	}

	Success(c, statuses)
}

// SetActive 切换邮箱的激活状态
func (h *MailboxHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	id := c.Param("id")
	if err := h.mailboxes.SetActive(id, *req.Active); err != nil {
		if errors.Is(err, service.ErrMailboxNotFound) {
			NotFound(c, GetErrorMessage(service.ErrMailboxNotFound))
			return
		}
		h.log.Error("failed to toggle mailbox", zap.Error(err))
		InternalError(c, MsgMailboxToggleFailed)
		return
	}

	SuccessWithMsg(c, "邮箱状态已更新", nil)
}

// EmailStats 返回最近 N 天的发送统计
func (h *MailboxHandler) EmailStats(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 90 {
			BadRequest(c, MsgInvalidRequest)
			return
		}
		days = parsed
	}

	stats, err := h.mailboxes.EmailStats(days)
	if err != nil {
		h.log.Error("failed to load email stats", zap.Error(err))
		InternalError(c, MsgEmailStatsFailed)
		return
	}

	Success(c, stats)
}
