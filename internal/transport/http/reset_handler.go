package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/auth"
	"campusfeedback/backend/internal/service"
)

// ResetHandler 处理密码重置的公开端点
type ResetHandler struct {
	resets *service.PasswordResetService
	log    *zap.Logger
}

// NewResetHandler 创建密码重置处理器
func NewResetHandler(resets *service.PasswordResetService, log *zap.Logger) *ResetHandler {
	return &ResetHandler{
		resets: resets,
		log:    log,
	}
}

type resetRequestBody struct {
	Email string `json:"email" binding:"required"`
}

type resetConfirmBody struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Request 受理密码重置请求
//
// 无论邮箱是否存在都返回同样的确认消息，防止账号探测。
func (h *ResetHandler) Request(c *gin.Context) {
	var req resetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.resets.Request(c.ClientIP(), req.Email); err != nil {
		if errors.Is(err, service.ErrTooManyRequests) {
			TooManyRequests(c, MsgResetRateLimited)
			return
		}
		h.log.Error("reset request failed", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	SuccessWithMsg(c, MsgResetAccepted, nil)
}

// Confirm 消费令牌并设置新密码
func (h *ResetHandler) Confirm(c *gin.Context) {
	var req resetConfirmBody
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.resets.Confirm(req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			BadRequest(c, GetErrorMessage(service.ErrTokenInvalid))
		case errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("reset confirm failed", zap.Error(err))
			InternalError(c, MsgResetFailed)
		}
		return
	}

	SuccessWithMsg(c, MsgResetConfirmed, nil)
}
