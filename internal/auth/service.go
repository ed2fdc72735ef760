package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive 账号已被禁用
	ErrUserInactive = errors.New("user is inactive")
	// ErrUserExists 邮箱或用户名已存在
	ErrUserExists = errors.New("user already exists")
	// ErrPasswordTooShort 密码过短
	ErrPasswordTooShort = errors.New("password too short (min 8 chars)")
	// ErrPasswordTooLong 密码过长
	ErrPasswordTooLong = errors.New("password too long (max 128 chars)")
)

// 密码长度限制
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// Service 管理账号认证服务
type Service struct {
	userRepo storage.UserRepository
}

// NewService 创建认证服务
func NewService(userRepo storage.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// CreateAdminInput 创建管理账号的输入
type CreateAdminInput struct {
	Email        string
	Username     string
	Password     string
	Role         domain.UserRole
	DepartmentID *string
}

// CreateAdmin 创建一个管理账号
func (s *Service) CreateAdmin(input CreateAdminInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(input.Email),
		Username:     strings.ToLower(input.Username),
		PasswordHash: hash,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login 校验凭据并返回账号
//
// 用户名与邮箱均可作为登录标识。凭据错误与账号不存在
// 返回同一个错误，避免探测有效账号。
func (s *Service) Login(identifier, password string) (*domain.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	user, err := s.userRepo.GetUserByEmail(identifier)
	if errors.Is(err, storage.ErrUserNotFound) {
		user, err = s.userRepo.GetUserByUsername(identifier)
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)
	return user, nil
}

// GetUserByID 根据 ID 获取账号
func (s *Service) GetUserByID(id string) (*domain.User, error) {
	return s.userRepo.GetUserByID(id)
}

// SetPassword 重置账号密码
func (s *Service) SetPassword(userID, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.UpdateUser(user)
}

// HashPassword 生成 bcrypt 密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ValidatePassword 校验密码长度
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
