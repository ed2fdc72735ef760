package memory

import (
	"sort"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== Academic Repository ==========

// SaveDepartment 创建或更新院系，院系代码冲突返回 ErrDuplicate
func (s *Store) SaveDepartment(d *domain.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.departments {
		if existing.Code == d.Code && existing.ID != d.ID {
			return storage.ErrDuplicate
		}
	}
	cp := *d
	s.departments[d.ID] = &cp
	return nil
}

// GetDepartment 根据 ID 获取院系
func (s *Store) GetDepartment(id string) (*domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.departments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// GetDepartmentByCode 根据院系代码获取院系
func (s *Store) GetDepartmentByCode(code string) (*domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.departments {
		if d.Code == code {
			cp := *d
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListDepartments 返回全部院系，按代码排序
func (s *Store) ListDepartments() ([]domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Department, 0, len(s.departments))
	for _, d := range s.departments {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// DeleteDepartment 删除院系
func (s *Store) DeleteDepartment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.departments, id)
	return nil
}

// SaveFaculty 创建或更新教师
func (s *Store) SaveFaculty(f *domain.Faculty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.faculty {
		if existing.Email == f.Email && existing.ID != f.ID {
			return storage.ErrDuplicate
		}
	}
	cp := *f
	s.faculty[f.ID] = &cp
	return nil
}

// GetFaculty 根据 ID 获取教师
func (s *Store) GetFaculty(id string) (*domain.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.faculty[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

// ListFaculty 返回教师列表，departmentID 为空时返回全部
func (s *Store) ListFaculty(departmentID string) ([]domain.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Faculty
	for _, f := range s.faculty {
		if departmentID == "" || f.DepartmentID == departmentID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteFaculty 删除教师
func (s *Store) DeleteFaculty(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.faculty[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.faculty, id)
	return nil
}

// SaveStudent 创建或更新学生，院系内学号冲突返回 ErrDuplicate
func (s *Store) SaveStudent(st *domain.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.students {
		if existing.DepartmentID == st.DepartmentID &&
			existing.RollNumber == st.RollNumber && existing.ID != st.ID {
			return storage.ErrDuplicate
		}
	}
	cp := *st
	s.students[st.ID] = &cp
	return nil
}

// GetStudent 根据 ID 获取学生
func (s *Store) GetStudent(id string) (*domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

// GetStudentByRoll 根据院系与学号获取学生
func (s *Store) GetStudentByRoll(departmentID, rollNumber string) (*domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.students {
		if st.DepartmentID == departmentID && st.RollNumber == rollNumber {
			cp := *st
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListStudents 返回学生列表，departmentID 为空时返回全部
func (s *Store) ListStudents(departmentID string) ([]domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Student
	for _, st := range s.students {
		if departmentID == "" || st.DepartmentID == departmentID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNumber < out[j].RollNumber })
	return out, nil
}

// DeleteStudent 删除学生
func (s *Store) DeleteStudent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.students, id)
	return nil
}

// SaveSubject 创建或更新课程，院系内课程代码冲突返回 ErrDuplicate
func (s *Store) SaveSubject(sub *domain.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subjects {
		if existing.DepartmentID == sub.DepartmentID &&
			existing.Code == sub.Code && existing.ID != sub.ID {
			return storage.ErrDuplicate
		}
	}
	cp := *sub
	s.subjects[sub.ID] = &cp
	return nil
}

// GetSubject 根据 ID 获取课程
func (s *Store) GetSubject(id string) (*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subjects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

// ListSubjects 返回课程列表，departmentID 为空时返回全部
func (s *Store) ListSubjects(departmentID string) ([]domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Subject
	for _, sub := range s.subjects {
		if departmentID == "" || sub.DepartmentID == departmentID {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// DeleteSubject 删除课程
func (s *Store) DeleteSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.subjects, id)
	return nil
}

// SaveSchedule 创建或更新开课安排，四元组冲突返回 ErrDuplicate
func (s *Store) SaveSchedule(sc *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.schedules {
		if existing.SubjectID == sc.SubjectID &&
			existing.FacultyID == sc.FacultyID &&
			existing.Section == sc.Section &&
			existing.AcademicYear == sc.AcademicYear && existing.ID != sc.ID {
			return storage.ErrDuplicate
		}
	}
	cp := *sc
	s.schedules[sc.ID] = &cp
	return nil
}

// GetSchedule 根据 ID 获取开课安排
func (s *Store) GetSchedule(id string) (*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schedules[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

// ListSchedules 返回全部开课安排
func (s *Store) ListSchedules() ([]domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Schedule, 0, len(s.schedules))
	for _, sc := range s.schedules {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteSchedule 删除开课安排
func (s *Store) DeleteSchedule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}
