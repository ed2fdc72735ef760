package storage

import (
	"errors"
	"time"

	"campusfeedback/backend/internal/domain"
)

// 存储层统一错误定义，内存实现与 SQL 实现共用
var (
	ErrMailboxExists   = errors.New("mailbox address already exists")
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrQuotaExceeded   = errors.New("mailbox quota exceeded")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
	ErrFeedbackExists = errors.New("feedback already submitted")

	ErrTokenNotFound = errors.New("reset token not found or expired")
)

// MailboxRepository 出站邮箱池的持久化接口
type MailboxRepository interface {
	// SaveMailbox 创建邮箱；地址冲突返回 ErrMailboxExists。
	// 后续变更只通过 SetMailboxActive 与 IncrementSendCounters 进行
	SaveMailbox(m *domain.Mailbox) error
	GetMailbox(id string) (*domain.Mailbox, error)
	GetMailboxByAddress(address string) (*domain.Mailbox, error)
	ListMailboxes() ([]domain.Mailbox, error)
	SetMailboxActive(id string, active bool) error

	// IncrementSendCounters 在单个原子步骤内完成惰性归零判断、
	// 配额校验与计数递增，并把 last_sent_at 推进到 now。
	// 配额不足时返回 ErrQuotaExceeded 且不产生任何写入。
	// 并发安全性由该方法保证，调用方不得拆成先读后写。
	IncrementSendCounters(id string, now time.Time) error

	AppendSendAttempt(a *domain.SendAttempt) error
	ListSendAttemptsSince(since time.Time) ([]domain.SendAttempt, error)
}

// UserRepository 管理账号的持久化接口
type UserRepository interface {
	CreateUser(u *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	UpdateUser(u *domain.User) error
	UpdateLastLogin(userID string) error
}

// AcademicRepository 院系、师生与开课安排的持久化接口
type AcademicRepository interface {
	SaveDepartment(d *domain.Department) error
	GetDepartment(id string) (*domain.Department, error)
	GetDepartmentByCode(code string) (*domain.Department, error)
	ListDepartments() ([]domain.Department, error)
	DeleteDepartment(id string) error

	SaveFaculty(f *domain.Faculty) error
	GetFaculty(id string) (*domain.Faculty, error)
	ListFaculty(departmentID string) ([]domain.Faculty, error)
	DeleteFaculty(id string) error

	SaveStudent(s *domain.Student) error
	GetStudent(id string) (*domain.Student, error)
	GetStudentByRoll(departmentID, rollNumber string) (*domain.Student, error)
	ListStudents(departmentID string) ([]domain.Student, error)
	DeleteStudent(id string) error

	SaveSubject(s *domain.Subject) error
	GetSubject(id string) (*domain.Subject, error)
	ListSubjects(departmentID string) ([]domain.Subject, error)
	DeleteSubject(id string) error

	SaveSchedule(s *domain.Schedule) error
	GetSchedule(id string) (*domain.Schedule, error)
	ListSchedules() ([]domain.Schedule, error)
	DeleteSchedule(id string) error
}

// FeedbackRepository 学生反馈与报表聚合的持久化接口
type FeedbackRepository interface {
	// SaveFeedback 保存一次反馈；同一学生对同一开课安排重复
	// 提交时返回 ErrFeedbackExists
	SaveFeedback(f *domain.Feedback) error
	ListFeedbackBySchedule(scheduleID string) ([]domain.Feedback, error)

	SubjectReports() ([]domain.SubjectReport, error)
	FacultyReports() ([]domain.FacultyReport, error)
	DepartmentReports() ([]domain.DepartmentReport, error)
}

// ResetTokenStore 密码重置令牌的短期存储
type ResetTokenStore interface {
	// SaveResetToken 保存令牌与用户的关联，超过 ttl 自动失效
	SaveResetToken(token, userID string, ttl time.Duration) error
	// ConsumeResetToken 取出令牌对应的用户并使令牌一次性失效；
	// 不存在或已过期返回 ErrTokenNotFound
	ConsumeResetToken(token string) (string, error)
}

// Store 聚合全部持久化接口
type Store interface {
	MailboxRepository
	UserRepository
	AcademicRepository
	FeedbackRepository

	Close() error
	Health() error
}
