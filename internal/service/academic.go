package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

var (
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord 违反唯一约束
	ErrDuplicateRecord = errors.New("record already exists")
	// ErrInvalidReference 引用的关联记录不存在
	ErrInvalidReference = errors.New("referenced record does not exist")
	// ErrMissingField 必填字段为空
	ErrMissingField = errors.New("required field is empty")
)

// AcademicService 院系、师生与开课安排的管理服务
//
// 全部写操作只向管理端开放，校验引用完整性后落库。
type AcademicService struct {
	repo storage.AcademicRepository
	log  *zap.Logger
}

// NewAcademicService 创建教务管理服务
func NewAcademicService(repo storage.AcademicRepository, log *zap.Logger) *AcademicService {
	return &AcademicService{repo: repo, log: log}
}

// mapStorageErr 把存储层错误翻译成服务层错误
func mapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrRecordNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return ErrDuplicateRecord
	default:
		return err
	}
}

// ---------- 院系 ----------

// CreateDepartment 创建院系；院系代码全局唯一
func (s *AcademicService) CreateDepartment(code, name string) (*domain.Department, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, ErrMissingField
	}

	now := time.Now().UTC()
	d := &domain.Department{
		ID:        uuid.NewString(),
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveDepartment(d); err != nil {
		return nil, mapStorageErr(err)
	}

	s.log.Info("department created",
		zap.String("department_id", d.ID),
		zap.String("code", d.Code),
	)
	return d, nil
}

// UpdateDepartment 更新院系名称
func (s *AcademicService) UpdateDepartment(id, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingField
	}

	d, err := s.repo.GetDepartment(id)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	d.Name = name
	d.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveDepartment(d); err != nil {
		return nil, mapStorageErr(err)
	}
	return d, nil
}

// GetDepartment 获取单个院系
func (s *AcademicService) GetDepartment(id string) (*domain.Department, error) {
	d, err := s.repo.GetDepartment(id)
	return d, mapStorageErr(err)
}

// ListDepartments 列出全部院系
func (s *AcademicService) ListDepartments() ([]domain.Department, error) {
	return s.repo.ListDepartments()
}

// DeleteDepartment 删除院系
func (s *AcademicService) DeleteDepartment(id string) error {
	return mapStorageErr(s.repo.DeleteDepartment(id))
}

// ---------- 教师 ----------

// CreateFacultyInput 创建教师的输入
type CreateFacultyInput struct {
	DepartmentID string
	Name         string
	Email        string
	Designation  string
}

// CreateFaculty 创建教师
func (s *AcademicService) CreateFaculty(input CreateFacultyInput) (*domain.Faculty, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrMissingField
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetDepartment(input.DepartmentID); err != nil {
		return nil, refErr(err)
	}

	now := time.Now().UTC()
	f := &domain.Faculty{
		ID:           uuid.NewString(),
		DepartmentID: input.DepartmentID,
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		Designation:  strings.TrimSpace(input.Designation),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.SaveFaculty(f); err != nil {
		return nil, mapStorageErr(err)
	}
	return f, nil
}

// UpdateFaculty 更新教师信息
func (s *AcademicService) UpdateFaculty(id string, input CreateFacultyInput) (*domain.Faculty, error) {
	f, err := s.repo.GetFaculty(id)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		f.Name = name
	}
	if input.Email != "" {
		if err := domain.ValidateEmail(input.Email); err != nil {
			return nil, err
		}
		f.Email = strings.ToLower(input.Email)
	}
	if input.DepartmentID != "" && input.DepartmentID != f.DepartmentID {
		if _, err := s.repo.GetDepartment(input.DepartmentID); err != nil {
			return nil, refErr(err)
		}
		f.DepartmentID = input.DepartmentID
	}
	if d := strings.TrimSpace(input.Designation); d != "" {
		f.Designation = d
	}

	f.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveFaculty(f); err != nil {
		return nil, mapStorageErr(err)
	}
	return f, nil
}

// GetFaculty 获取单个教师
func (s *AcademicService) GetFaculty(id string) (*domain.Faculty, error) {
	f, err := s.repo.GetFaculty(id)
	return f, mapStorageErr(err)
}

// ListFaculty 列出教师，departmentID 为空时不过滤
func (s *AcademicService) ListFaculty(departmentID string) ([]domain.Faculty, error) {
	return s.repo.ListFaculty(departmentID)
}

// DeleteFaculty 删除教师
func (s *AcademicService) DeleteFaculty(id string) error {
	return mapStorageErr(s.repo.DeleteFaculty(id))
}

// ---------- 学生 ----------

// CreateStudentInput 创建学生的输入
type CreateStudentInput struct {
	DepartmentID string
	RollNumber   string
	Name         string
	Email        string
	Semester     int
	Section      string
}

// CreateStudent 创建学生；同院系内学号唯一
func (s *AcademicService) CreateStudent(input CreateStudentInput) (*domain.Student, error) {
	input.RollNumber = strings.TrimSpace(input.RollNumber)
	input.Name = strings.TrimSpace(input.Name)
	if input.RollNumber == "" || input.Name == "" {
		return nil, ErrMissingField
	}
	if input.Semester < 1 {
		return nil, fmt.Errorf("%w: semester", ErrMissingField)
	}
	if input.Email != "" {
		if err := domain.ValidateEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if _, err := s.repo.GetDepartment(input.DepartmentID); err != nil {
		return nil, refErr(err)
	}

	now := time.Now().UTC()
	st := &domain.Student{
		ID:           uuid.NewString(),
		DepartmentID: input.DepartmentID,
		RollNumber:   input.RollNumber,
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		Semester:     input.Semester,
		Section:      strings.TrimSpace(input.Section),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.SaveStudent(st); err != nil {
		return nil, mapStorageErr(err)
	}
	return st, nil
}

// GetStudent 获取单个学生
func (s *AcademicService) GetStudent(id string) (*domain.Student, error) {
	st, err := s.repo.GetStudent(id)
	return st, mapStorageErr(err)
}

// GetStudentByRoll 按院系与学号定位学生
func (s *AcademicService) GetStudentByRoll(departmentID, rollNumber string) (*domain.Student, error) {
	st, err := s.repo.GetStudentByRoll(departmentID, strings.TrimSpace(rollNumber))
	return st, mapStorageErr(err)
}

// ListStudents 列出学生，departmentID 为空时不过滤
func (s *AcademicService) ListStudents(departmentID string) ([]domain.Student, error) {
	return s.repo.ListStudents(departmentID)
}

// DeleteStudent 删除学生
func (s *AcademicService) DeleteStudent(id string) error {
	return mapStorageErr(s.repo.DeleteStudent(id))
}

// ---------- 课程 ----------

// CreateSubjectInput 创建课程的输入
type CreateSubjectInput struct {
	DepartmentID string
	Code         string
	Name         string
	Semester     int
}

// CreateSubject 创建课程；同院系内课程代码唯一
func (s *AcademicService) CreateSubject(input CreateSubjectInput) (*domain.Subject, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" || input.Name == "" {
		return nil, ErrMissingField
	}
	if input.Semester < 1 {
		return nil, fmt.Errorf("%w: semester", ErrMissingField)
	}
	if _, err := s.repo.GetDepartment(input.DepartmentID); err != nil {
		return nil, refErr(err)
	}

	now := time.Now().UTC()
	sub := &domain.Subject{
		ID:           uuid.NewString(),
		DepartmentID: input.DepartmentID,
		Code:         input.Code,
		Name:         input.Name,
		Semester:     input.Semester,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.SaveSubject(sub); err != nil {
		return nil, mapStorageErr(err)
	}
	return sub, nil
}

// GetSubject 获取单门课程
func (s *AcademicService) GetSubject(id string) (*domain.Subject, error) {
	sub, err := s.repo.GetSubject(id)
	return sub, mapStorageErr(err)
}

// ListSubjects 列出课程，departmentID 为空时不过滤
func (s *AcademicService) ListSubjects(departmentID string) ([]domain.Subject, error) {
	return s.repo.ListSubjects(departmentID)
}

// DeleteSubject 删除课程
func (s *AcademicService) DeleteSubject(id string) error {
	return mapStorageErr(s.repo.DeleteSubject(id))
}

// ---------- 开课安排 ----------

// CreateScheduleInput 创建开课安排的输入
type CreateScheduleInput struct {
	SubjectID    string
	FacultyID    string
	Section      string
	AcademicYear string
}

// CreateSchedule 创建开课安排
//
// 同一学年内，同一教师对同一班级讲授同一课程只允许出现一次。
func (s *AcademicService) CreateSchedule(input CreateScheduleInput) (*domain.Schedule, error) {
	input.Section = strings.TrimSpace(input.Section)
	input.AcademicYear = strings.TrimSpace(input.AcademicYear)
	if input.Section == "" || input.AcademicYear == "" {
		return nil, ErrMissingField
	}
	if _, err := s.repo.GetSubject(input.SubjectID); err != nil {
		return nil, refErr(err)
	}
	if _, err := s.repo.GetFaculty(input.FacultyID); err != nil {
		return nil, refErr(err)
	}

	now := time.Now().UTC()
	sch := &domain.Schedule{
		ID:           uuid.NewString(),
		SubjectID:    input.SubjectID,
		FacultyID:    input.FacultyID,
		Section:      input.Section,
		AcademicYear: input.AcademicYear,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.SaveSchedule(sch); err != nil {
		return nil, mapStorageErr(err)
	}
	return sch, nil
}

// GetSchedule 获取单条开课安排
func (s *AcademicService) GetSchedule(id string) (*domain.Schedule, error) {
	sch, err := s.repo.GetSchedule(id)
	return sch, mapStorageErr(err)
}

// ListSchedules 列出全部开课安排
func (s *AcademicService) ListSchedules() ([]domain.Schedule, error) {
	return s.repo.ListSchedules()
}

// DeleteSchedule 删除开课安排
func (s *AcademicService) DeleteSchedule(id string) error {
	return mapStorageErr(s.repo.DeleteSchedule(id))
}

// refErr 把引用查询的 not found 翻译成 ErrInvalidReference
func refErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrInvalidReference
	}
	return err
}
