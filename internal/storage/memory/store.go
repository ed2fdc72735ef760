package memory

import (
	"strings"
	"sync"
	"time"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// Store 使用内存保存全部业务数据，主要用于开发验证与测试。
//
// 所有写操作持同一把互斥锁，因此 IncrementSendCounters 的
// 检查-递增天然是原子的；多进程部署时必须换用 SQL 存储。
type Store struct {
	mu sync.RWMutex

	mailboxes    map[string]*domain.Mailbox // mailboxID -> mailbox
	byAddress    map[string]string          // address -> mailboxID
	sendAttempts []*domain.SendAttempt

	users      map[string]*domain.User // userID -> user
	byEmail    map[string]string       // email -> userID
	byUsername map[string]string       // username -> userID

	departments map[string]*domain.Department
	faculty     map[string]*domain.Faculty
	students    map[string]*domain.Student
	subjects    map[string]*domain.Subject
	schedules   map[string]*domain.Schedule

	feedback  map[string]*domain.Feedback
	byStudent map[string]string // "studentID:scheduleID" -> feedbackID
}

// NewStore 创建一个内存存储实例
func NewStore() *Store {
	return &Store{
		mailboxes:   make(map[string]*domain.Mailbox),
		byAddress:   make(map[string]string),
		users:       make(map[string]*domain.User),
		byEmail:     make(map[string]string),
		byUsername:  make(map[string]string),
		departments: make(map[string]*domain.Department),
		faculty:     make(map[string]*domain.Faculty),
		students:    make(map[string]*domain.Student),
		subjects:    make(map[string]*domain.Subject),
		schedules:   make(map[string]*domain.Schedule),
		feedback:    make(map[string]*domain.Feedback),
		byStudent:   make(map[string]string),
	}
}

// Close 关闭存储，内存实现无需清理
func (s *Store) Close() error { return nil }

// Health 健康检查，内存实现恒为健康
func (s *Store) Health() error { return nil }

// ========== User Repository ==========

// CreateUser 创建管理账号
func (s *Store) CreateUser(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	username := strings.ToLower(u.Username)
	if _, ok := s.byEmail[email]; ok {
		return storage.ErrUserExists
	}
	if _, ok := s.byUsername[username]; ok {
		return storage.ErrUserExists
	}

	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[email] = u.ID
	s.byUsername[username] = u.ID
	return nil
}

// GetUserByID 根据 ID 获取管理账号
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail 根据邮箱获取管理账号
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// GetUserByUsername 根据用户名获取管理账号
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// UpdateUser 更新管理账号
func (s *Store) UpdateUser(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[u.ID]
	if !ok {
		return storage.ErrUserNotFound
	}
	delete(s.byEmail, strings.ToLower(old.Email))
	delete(s.byUsername, strings.ToLower(old.Username))

	cp := *u
	cp.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = &cp
	s.byEmail[strings.ToLower(u.Email)] = u.ID
	s.byUsername[strings.ToLower(u.Username)] = u.ID
	return nil
}

// UpdateLastLogin 记录最近登录时间
func (s *Store) UpdateLastLogin(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return nil
}
