package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/service"
)

// AcademicHandler 处理院系、师生与开课安排的管理端点
type AcademicHandler struct {
	academic *service.AcademicService
	log      *zap.Logger
}

// NewAcademicHandler 创建教务管理处理器
func NewAcademicHandler(academic *service.AcademicService, log *zap.Logger) *AcademicHandler {
	return &AcademicHandler{
		academic: academic,
		log:      log,
	}
}

// respondAcademicErr 统一处理教务服务返回的错误
func (h *AcademicHandler) respondAcademicErr(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		NotFound(c, GetErrorMessage(service.ErrRecordNotFound))
	case errors.Is(err, service.ErrDuplicateRecord):
		Conflict(c, GetErrorMessage(service.ErrDuplicateRecord))
	case errors.Is(err, service.ErrInvalidReference):
		BadRequest(c, GetErrorMessage(service.ErrInvalidReference))
	case errors.Is(err, service.ErrMissingField):
		BadRequest(c, GetErrorMessage(service.ErrMissingField))
	case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrEmailTooLong):
		BadRequest(c, GetErrorMessage(err))
	default:
		h.log.Error("academic operation failed", zap.Error(err))
		InternalError(c, fallback)
	}
}

// ---------- 院系 ----------

type departmentRequest struct {
	Code string `json:"code"`
	Name string `json:"name" binding:"required"`
}

// CreateDepartment 创建院系
func (h *AcademicHandler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	dept, err := h.academic.CreateDepartment(req.Code, req.Name)
	if err != nil {
		h.respondAcademicErr(c, err, MsgCreateFailed)
		return
	}
	Created(c, dept)
}

// UpdateDepartment 更新院系名称
func (h *AcademicHandler) UpdateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	dept, err := h.academic.UpdateDepartment(c.Param("id"), req.Name)
	if err != nil {
		h.respondAcademicErr(c, err, MsgUpdateFailed)
		return
	}
	Success(c, dept)
}

// ListDepartments 列出全部院系
func (h *AcademicHandler) ListDepartments(c *gin.Context) {
	depts, err := h.academic.ListDepartments()
	if err != nil {
		h.respondAcademicErr(c, err, MsgListFailed)
		return
	}
	Success(c, depts)
}

// GetDepartment 获取单个院系
func (h *AcademicHandler) GetDepartment(c *gin.Context) {
	dept, err := h.academic.GetDepartment(c.Param("id"))
	if err != nil {
		h.respondAcademicErr(c, err, MsgGetFailed)
		return
	}
	Success(c, dept)
}

// DeleteDepartment 删除院系
func (h *AcademicHandler) DeleteDepartment(c *gin.Context) {
	if err := h.academic.DeleteDepartment(c.Param("id")); err != nil {
		h.respondAcademicErr(c, err, MsgDeleteFailed)
		return
	}
	NoContent(c)
}

// ---------- 教师 ----------

type facultyRequest struct {
	DepartmentID string `json:"departmentId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Designation  string `json:"designation"`
}

// CreateFaculty 创建教师
func (h *AcademicHandler) CreateFaculty(c *gin.Context) {
	var req facultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	faculty, err := h.academic.CreateFaculty(service.CreateFacultyInput{
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		Email:        req.Email,
		Designation:  req.Designation,
	})
	if err != nil {
		h.respondAcademicErr(c, err, MsgCreateFailed)
		return
	}
	Created(c, faculty)
}

// UpdateFaculty 更新教师信息
func (h *AcademicHandler) UpdateFaculty(c *gin.Context) {
	var req facultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	faculty, err := h.academic.UpdateFaculty(c.Param("id"), service.CreateFacultyInput{
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		Email:        req.Email,
		Designation:  req.Designation,
	})
	if err != nil {
		h.respondAcademicErr(c, err, MsgUpdateFailed)
		return
	}
	Success(c, faculty)
}

// ListFaculty 列出教师，支持按院系过滤
func (h *AcademicHandler) ListFaculty(c *gin.Context) {
	faculty, err := h.academic.ListFaculty(c.Query("departmentId"))
	if err != nil {
		h.respondAcademicErr(c, err, MsgListFailed)
		return
	}
	Success(c, faculty)
}

// DeleteFaculty 删除教师
func (h *AcademicHandler) DeleteFaculty(c *gin.Context) {
	if err := h.academic.DeleteFaculty(c.Param("id")); err != nil {
		h.respondAcademicErr(c, err, MsgDeleteFailed)
		return
	}
	NoContent(c)
}

// ---------- 学生 ----------

type studentRequest struct {
	DepartmentID string `json:"departmentId" binding:"required"`
	RollNumber   string `json:"rollNumber" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email"`
	Semester     int    `json:"semester" binding:"required"`
	Section      string `json:"section"`
}

// CreateStudent 创建学生
func (h *AcademicHandler) CreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	student, err := h.academic.CreateStudent(service.CreateStudentInput{
		DepartmentID: req.DepartmentID,
		RollNumber:   req.RollNumber,
		Name:         req.Name,
		Email:        req.Email,
		Semester:     req.Semester,
		Section:      req.Section,
	})
	if err != nil {
		h.respondAcademicErr(c, err, MsgCreateFailed)
		return
	}
	Created(c, student)
}

// ListStudents 列出学生，支持按院系过滤
func (h *AcademicHandler) ListStudents(c *gin.Context) {
	students, err := h.academic.ListStudents(c.Query("departmentId"))
	if err != nil {
		h.respondAcademicErr(c, err, MsgListFailed)
		return
	}
	Success(c, students)
}

// DeleteStudent 删除学生
func (h *AcademicHandler) DeleteStudent(c *gin.Context) {
	if err := h.academic.DeleteStudent(c.Param("id")); err != nil {
		h.respondAcademicErr(c, err, MsgDeleteFailed)
		return
	}
	NoContent(c)
}

// ---------- 课程 ----------

type subjectRequest struct {
	DepartmentID string `json:"departmentId" binding:"required"`
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Semester     int    `json:"semester" binding:"required"`
}

// CreateSubject 创建课程
func (h *AcademicHandler) CreateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	subject, err := h.academic.CreateSubject(service.CreateSubjectInput{
		DepartmentID: req.DepartmentID,
		Code:         req.Code,
		Name:         req.Name,
		Semester:     req.Semester,
	})
	if err != nil {
		h.respondAcademicErr(c, err, MsgCreateFailed)
		return
	}
	Created(c, subject)
}

// ListSubjects 列出课程，支持按院系过滤
func (h *AcademicHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.academic.ListSubjects(c.Query("departmentId"))
	if err != nil {
		h.respondAcademicErr(c, err, MsgListFailed)
		return
	}
	Success(c, subjects)
}

// DeleteSubject 删除课程
func (h *AcademicHandler) DeleteSubject(c *gin.Context) {
	if err := h.academic.DeleteSubject(c.Param("id")); err != nil {
		h.respondAcademicErr(c, err, MsgDeleteFailed)
		return
	}
	NoContent(c)
}

// ---------- 开课安排 ----------

type scheduleRequest struct {
	SubjectID    string `json:"subjectId" binding:"required"`
	FacultyID    string `json:"facultyId" binding:"required"`
	Section      string `json:"section" binding:"required"`
	AcademicYear string `json:"academicYear" binding:"required"`
}

// CreateSchedule 创建开课安排
func (h *AcademicHandler) CreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	schedule, err := h.academic.CreateSchedule(service.CreateScheduleInput{
		SubjectID:    req.SubjectID,
		FacultyID:    req.FacultyID,
		Section:      req.Section,
		AcademicYear: req.AcademicYear,
	})
	if err != nil {
		h.respondAcademicErr(c, err, MsgCreateFailed)
		return
	}
	Created(c, schedule)
}

// ListSchedules 列出全部开课安排
func (h *AcademicHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.academic.ListSchedules()
	if err != nil {
		h.respondAcademicErr(c, err, MsgListFailed)
		return
	}
	Success(c, schedules)
}

// DeleteSchedule 删除开课安排
func (h *AcademicHandler) DeleteSchedule(c *gin.Context) {
	if err := h.academic.DeleteSchedule(c.Param("id")); err != nil {
		h.respondAcademicErr(c, err, MsgDeleteFailed)
		return
	}
	NoContent(c)
}
