package domain

import "time"

// UserRole 管理账号角色
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleSuper UserRole = "super" // 超级管理员，可管理邮箱池
)

// User 表示后台管理账号的业务实体
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Username     string     `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255)"` // 不返回给前端
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'admin';index"`
	DepartmentID *string    `json:"departmentId,omitempty" gorm:"type:varchar(36);index"` // 为空表示全校范围
	IsActive     bool       `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// IsAdmin 判断是否具备后台访问权限
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuper
}

// IsSuper 判断是否为超级管理员
func (u *User) IsSuper() bool {
	return u.Role == RoleSuper
}

// HasDepartmentAccess 判断账号是否可操作指定院系的数据
//
// 超级管理员与未绑定院系的账号拥有全校范围；其余账号仅限
// 自己绑定的院系。
func (u *User) HasDepartmentAccess(departmentID string) bool {
	if u.IsSuper() || u.DepartmentID == nil {
		return true
	}
	return *u.DepartmentID == departmentID
}
