package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/auth"
	jwtpkg "campusfeedback/backend/internal/auth/jwt"
	"campusfeedback/backend/internal/domain"
)

// AuthHandler 处理管理端认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service
	jwtManager  *jwtpkg.Manager
	log         *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		log:         log,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // 邮箱或用户名
	Password   string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
}

type userResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	Role         string  `json:"role"`
	DepartmentID *string `json:"departmentId,omitempty"`
	IsActive     bool    `json:"isActive"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
	}
}

// Login 处理管理端登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Login(req.Identifier, req.Password)
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			Unauthorized(c, GetErrorMessage(err))
		case auth.ErrUserInactive:
			Forbidden(c, GetErrorMessage(err))
		default:
			h.log.Error("login failed", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.log.Error("failed to generate tokens", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	h.log.Info("admin logged in",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	Success(c, authResponse{
		User:         toUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// Refresh 用刷新令牌换取新的令牌对
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		Unauthorized(c, MsgTokenExpired)
		return
	}

	// 刷新前确认账号仍然有效
	user, err := h.authService.GetUserByID(claims.UserID)
	if err != nil || !user.IsActive {
		Unauthorized(c, MsgTokenInvalid)
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.log.Error("failed to generate tokens", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	Success(c, authResponse{
		User:         toUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// Me 返回当前登录账号信息
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		Unauthorized(c, MsgAuthRequired)
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		Unauthorized(c, MsgTokenInvalid)
		return
	}

	Success(c, toUserResponse(user))
}
