package sql

import (
	"database/sql"
	"errors"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== Academic Repository ==========
//
// 管理端 CRUD 使用先 UPDATE 后 INSERT 的写入方式：管理操作
// 串行且低频，不需要数据库方言各异的 upsert 语法。

// SaveDepartment 创建或更新院系
func (s *Store) SaveDepartment(d *domain.Department) error {
	update := s.rebind(`UPDATE departments SET code = ?, name = ?, updated_at = ? WHERE id = ?`)
	res, err := s.db.Exec(update, d.Code, d.Name, d.UpdatedAt, d.ID)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	insert := s.rebind(`INSERT INTO departments (id, code, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
	_, err = s.db.Exec(insert, d.ID, d.Code, d.Name, d.CreatedAt, d.UpdatedAt)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	return err
}

// GetDepartment 根据 ID 获取院系
func (s *Store) GetDepartment(id string) (*domain.Department, error) {
	query := s.rebind(`SELECT id, code, name, created_at, updated_at FROM departments WHERE id = ?`)
	var d domain.Department
	err := s.db.QueryRow(query, id).Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDepartmentByCode 根据院系代码获取院系
func (s *Store) GetDepartmentByCode(code string) (*domain.Department, error) {
	query := s.rebind(`SELECT id, code, name, created_at, updated_at FROM departments WHERE code = ?`)
	var d domain.Department
	err := s.db.QueryRow(query, code).Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDepartments 返回全部院系，按代码排序
func (s *Store) ListDepartments() ([]domain.Department, error) {
	rows, err := s.db.Query(`SELECT id, code, name, created_at, updated_at FROM departments ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDepartment 删除院系
func (s *Store) DeleteDepartment(id string) error {
	return s.deleteByID("departments", id)
}

// SaveFaculty 创建或更新教师
func (s *Store) SaveFaculty(f *domain.Faculty) error {
	update := s.rebind(`
		UPDATE faculties SET department_id = ?, name = ?, email = ?, designation = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := s.db.Exec(update, f.DepartmentID, f.Name, f.Email, f.Designation, f.UpdatedAt, f.ID)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	insert := s.rebind(`
		INSERT INTO faculties (id, department_id, name, email, designation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.Exec(insert, f.ID, f.DepartmentID, f.Name, f.Email, f.Designation, f.CreatedAt, f.UpdatedAt)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	return err
}

// GetFaculty 根据 ID 获取教师
func (s *Store) GetFaculty(id string) (*domain.Faculty, error) {
	query := s.rebind(`
		SELECT id, department_id, name, email, designation, created_at, updated_at
		FROM faculties WHERE id = ?
	`)
	var f domain.Faculty
	err := s.db.QueryRow(query, id).Scan(
		&f.ID, &f.DepartmentID, &f.Name, &f.Email, &f.Designation, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFaculty 返回教师列表，departmentID 为空时返回全部
func (s *Store) ListFaculty(departmentID string) ([]domain.Faculty, error) {
	query := `
		SELECT id, department_id, name, email, designation, created_at, updated_at
		FROM faculties
	`
	var args []interface{}
	if departmentID != "" {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Faculty
	for rows.Next() {
		var f domain.Faculty
		if err := rows.Scan(&f.ID, &f.DepartmentID, &f.Name, &f.Email, &f.Designation, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteFaculty 删除教师
func (s *Store) DeleteFaculty(id string) error {
	return s.deleteByID("faculties", id)
}

// SaveStudent 创建或更新学生
func (s *Store) SaveStudent(st *domain.Student) error {
	update := s.rebind(`
		UPDATE students SET department_id = ?, roll_number = ?, name = ?, email = ?, semester = ?, section = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := s.db.Exec(update,
		st.DepartmentID, st.RollNumber, st.Name, st.Email, st.Semester, st.Section, st.UpdatedAt, st.ID,
	)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	insert := s.rebind(`
		INSERT INTO students (id, department_id, roll_number, name, email, semester, section, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.Exec(insert,
		st.ID, st.DepartmentID, st.RollNumber, st.Name, st.Email, st.Semester, st.Section, st.CreatedAt, st.UpdatedAt,
	)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	return err
}

// GetStudent 根据 ID 获取学生
func (s *Store) GetStudent(id string) (*domain.Student, error) {
	query := s.rebind(`
		SELECT id, department_id, roll_number, name, email, semester, section, created_at, updated_at
		FROM students WHERE id = ?
	`)
	return s.scanStudentRow(s.db.QueryRow(query, id))
}

// GetStudentByRoll 根据院系与学号获取学生
func (s *Store) GetStudentByRoll(departmentID, rollNumber string) (*domain.Student, error) {
	query := s.rebind(`
		SELECT id, department_id, roll_number, name, email, semester, section, created_at, updated_at
		FROM students WHERE department_id = ? AND roll_number = ?
	`)
	return s.scanStudentRow(s.db.QueryRow(query, departmentID, rollNumber))
}

func (s *Store) scanStudentRow(row *sql.Row) (*domain.Student, error) {
	var st domain.Student
	err := row.Scan(
		&st.ID, &st.DepartmentID, &st.RollNumber, &st.Name, &st.Email,
		&st.Semester, &st.Section, &st.CreatedAt, &st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStudents 返回学生列表，departmentID 为空时返回全部
func (s *Store) ListStudents(departmentID string) ([]domain.Student, error) {
	query := `
		SELECT id, department_id, roll_number, name, email, semester, section, created_at, updated_at
		FROM students
	`
	var args []interface{}
	if departmentID != "" {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY roll_number`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		var st domain.Student
		if err := rows.Scan(&st.ID, &st.DepartmentID, &st.RollNumber, &st.Name, &st.Email,
			&st.Semester, &st.Section, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// DeleteStudent 删除学生
func (s *Store) DeleteStudent(id string) error {
	return s.deleteByID("students", id)
}

// SaveSubject 创建或更新课程
func (s *Store) SaveSubject(sub *domain.Subject) error {
	update := s.rebind(`
		UPDATE subjects SET department_id = ?, code = ?, name = ?, semester = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := s.db.Exec(update, sub.DepartmentID, sub.Code, sub.Name, sub.Semester, sub.UpdatedAt, sub.ID)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	insert := s.rebind(`
		INSERT INTO subjects (id, department_id, code, name, semester, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.Exec(insert, sub.ID, sub.DepartmentID, sub.Code, sub.Name, sub.Semester, sub.CreatedAt, sub.UpdatedAt)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	return err
}

// GetSubject 根据 ID 获取课程
func (s *Store) GetSubject(id string) (*domain.Subject, error) {
	query := s.rebind(`
		SELECT id, department_id, code, name, semester, created_at, updated_at
		FROM subjects WHERE id = ?
	`)
	var sub domain.Subject
	err := s.db.QueryRow(query, id).Scan(
		&sub.ID, &sub.DepartmentID, &sub.Code, &sub.Name, &sub.Semester, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubjects 返回课程列表，departmentID 为空时返回全部
func (s *Store) ListSubjects(departmentID string) ([]domain.Subject, error) {
	query := `
		SELECT id, department_id, code, name, semester, created_at, updated_at
		FROM subjects
	`
	var args []interface{}
	if departmentID != "" {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY code`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Subject
	for rows.Next() {
		var sub domain.Subject
		if err := rows.Scan(&sub.ID, &sub.DepartmentID, &sub.Code, &sub.Name, &sub.Semester, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// DeleteSubject 删除课程
func (s *Store) DeleteSubject(id string) error {
	return s.deleteByID("subjects", id)
}

// SaveSchedule 创建或更新开课安排
func (s *Store) SaveSchedule(sc *domain.Schedule) error {
	update := s.rebind(`
		UPDATE schedules SET subject_id = ?, faculty_id = ?, section = ?, academic_year = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := s.db.Exec(update, sc.SubjectID, sc.FacultyID, sc.Section, sc.AcademicYear, sc.UpdatedAt, sc.ID)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	insert := s.rebind(`
		INSERT INTO schedules (id, subject_id, faculty_id, section, academic_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.Exec(insert, sc.ID, sc.SubjectID, sc.FacultyID, sc.Section, sc.AcademicYear, sc.CreatedAt, sc.UpdatedAt)
	if isDuplicateKey(err) {
		return storage.ErrDuplicate
	}
	return err
}

// GetSchedule 根据 ID 获取开课安排
func (s *Store) GetSchedule(id string) (*domain.Schedule, error) {
	query := s.rebind(`
		SELECT id, subject_id, faculty_id, section, academic_year, created_at, updated_at
		FROM schedules WHERE id = ?
	`)
	var sc domain.Schedule
	err := s.db.QueryRow(query, id).Scan(
		&sc.ID, &sc.SubjectID, &sc.FacultyID, &sc.Section, &sc.AcademicYear, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListSchedules 返回全部开课安排
func (s *Store) ListSchedules() ([]domain.Schedule, error) {
	rows, err := s.db.Query(`
		SELECT id, subject_id, faculty_id, section, academic_year, created_at, updated_at
		FROM schedules ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Schedule
	for rows.Next() {
		var sc domain.Schedule
		if err := rows.Scan(&sc.ID, &sc.SubjectID, &sc.FacultyID, &sc.Section, &sc.AcademicYear, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// DeleteSchedule 删除开课安排
func (s *Store) DeleteSchedule(id string) error {
	return s.deleteByID("schedules", id)
}

// deleteByID 按主键删除一行
func (s *Store) deleteByID(table, id string) error {
	query := s.rebind(`DELETE FROM ` + table + ` WHERE id = ?`)
	res, err := s.db.Exec(query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
