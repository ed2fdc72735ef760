package sql

import (
	"database/sql"
	"errors"
	"time"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== User Repository ==========

// CreateUser 创建管理账号
func (s *Store) CreateUser(u *domain.User) error {
	query := s.rebind(`
		INSERT INTO users (id, email, username, password_hash, role, department_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.Role,
		u.DepartmentID,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isDuplicateKey(err) {
		return storage.ErrUserExists
	}
	return err
}

const userColumns = `id, email, username, password_hash, role, department_id, is_active,
	created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var u domain.User
	var departmentID sql.NullString
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&departmentID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	if departmentID.Valid {
		u.DepartmentID = &departmentID.String
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return &u, nil
}

// GetUserByID 根据 ID 获取管理账号
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	u, err := scanUser(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	return u, err
}

// GetUserByEmail 根据邮箱获取管理账号
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER(?)`)
	u, err := scanUser(s.db.QueryRow(query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	return u, err
}

// GetUserByUsername 根据用户名获取管理账号
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER(?)`)
	u, err := scanUser(s.db.QueryRow(query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	return u, err
}

// UpdateUser 更新管理账号
func (s *Store) UpdateUser(u *domain.User) error {
	query := s.rebind(`
		UPDATE users
		SET email = ?, username = ?, password_hash = ?, role = ?, department_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := s.db.Exec(query,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.Role,
		u.DepartmentID,
		u.IsActive,
		time.Now().UTC(),
		u.ID,
	)
	if isDuplicateKey(err) {
		return storage.ErrUserExists
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin 记录最近登录时间
func (s *Store) UpdateLastLogin(userID string) error {
	query := s.rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`)
	_, err := s.db.Exec(query, time.Now().UTC(), userID)
	return err
}
