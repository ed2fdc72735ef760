package domain

import "time"

// 反馈评分的取值区间
const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackQuestionCount 固定问卷的题目数量
const FeedbackQuestionCount = 10

// Feedback 一名学生对一条开课安排的一次反馈
//
// 同一学生对同一开课安排只允许提交一次，提交后不可修改。
type Feedback struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	StudentID  string    `json:"studentId" gorm:"type:varchar(36);index:idx_feedback_unique,unique;not null"`
	ScheduleID string    `json:"scheduleId" gorm:"type:varchar(36);index:idx_feedback_unique,unique;not null"`
	Ratings    []Rating  `json:"ratings" gorm:"foreignKey:FeedbackID"`
	Comment    string    `json:"comment,omitempty" gorm:"type:varchar(1000)"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// Rating 问卷中单个题目的评分
type Rating struct {
	ID         string `json:"-" gorm:"primaryKey;type:varchar(36)"`
	FeedbackID string `json:"-" gorm:"type:varchar(36);index;not null"`
	Question   int    `json:"question" gorm:"not null"` // 题号，从 1 开始
	Score      int    `json:"score" gorm:"not null"`    // 1-5 分
}

// SubjectReport 按课程聚合的反馈报表行
type SubjectReport struct {
	SubjectID     string  `json:"subjectId"`
	SubjectCode   string  `json:"subjectCode"`
	SubjectName   string  `json:"subjectName"`
	FeedbackCount int     `json:"feedbackCount"`
	AverageScore  float64 `json:"averageScore"`
}

// FacultyReport 按教师聚合的反馈报表行
type FacultyReport struct {
	FacultyID     string  `json:"facultyId"`
	FacultyName   string  `json:"facultyName"`
	FeedbackCount int     `json:"feedbackCount"`
	AverageScore  float64 `json:"averageScore"`
}

// DepartmentReport 按院系聚合的反馈报表行
type DepartmentReport struct {
	DepartmentID   string  `json:"departmentId"`
	DepartmentName string  `json:"departmentName"`
	StudentCount   int     `json:"studentCount"`
	FeedbackCount  int     `json:"feedbackCount"`
	AverageScore   float64 `json:"averageScore"`
}
