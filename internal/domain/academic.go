package domain

import "time"

// Department 院系
type Department struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code      string    `json:"code" gorm:"type:varchar(20);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Faculty 教师，归属于某个院系
type Faculty struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DepartmentID string    `json:"departmentId" gorm:"type:varchar(36);index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Designation  string    `json:"designation,omitempty" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Student 学生，院系内学号唯一
type Student struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DepartmentID string    `json:"departmentId" gorm:"type:varchar(36);index:idx_students_dept_roll,unique;not null"`
	RollNumber   string    `json:"rollNumber" gorm:"type:varchar(50);index:idx_students_dept_roll,unique;not null"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255)"`
	Semester     int       `json:"semester" gorm:"not null"`
	Section      string    `json:"section,omitempty" gorm:"type:varchar(10)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Subject 课程，院系内课程代码唯一
type Subject struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DepartmentID string    `json:"departmentId" gorm:"type:varchar(36);index:idx_subjects_dept_code,unique;not null"`
	Code         string    `json:"code" gorm:"type:varchar(20);index:idx_subjects_dept_code,unique;not null"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	Semester     int       `json:"semester" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Schedule 开课安排：某位教师在某学期向某班级讲授某门课程
//
// 学生反馈以开课安排为评价对象，而非直接指向课程或教师。
type Schedule struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SubjectID    string    `json:"subjectId" gorm:"type:varchar(36);index:idx_schedules_unique,unique;not null"`
	FacultyID    string    `json:"facultyId" gorm:"type:varchar(36);index:idx_schedules_unique,unique;not null"`
	Section      string    `json:"section" gorm:"type:varchar(10);index:idx_schedules_unique,unique;not null"`
	AcademicYear string    `json:"academicYear" gorm:"type:varchar(20);index:idx_schedules_unique,unique;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
