package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/service"
)

// FeedbackHandler 处理学生反馈的提交与查询
type FeedbackHandler struct {
	feedback *service.FeedbackService
	log      *zap.Logger
}

// NewFeedbackHandler 创建反馈处理器
func NewFeedbackHandler(feedback *service.FeedbackService, log *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		log:      log,
	}
}

type submitFeedbackRequest struct {
	DepartmentID string `json:"departmentId" binding:"required"`
	RollNumber   string `json:"rollNumber" binding:"required"`
	ScheduleID   string `json:"scheduleId" binding:"required"`
	Scores       []int  `json:"scores" binding:"required"`
	Comment      string `json:"comment"`
}

// Submit 受理一条匿名反馈
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	fb, err := h.feedback.Submit(service.SubmitFeedbackInput{
		DepartmentID: req.DepartmentID,
		RollNumber:   req.RollNumber,
		ScheduleID:   req.ScheduleID,
		Scores:       req.Scores,
		Comment:      req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeedbackAlreadySubmitted):
			Conflict(c, GetErrorMessage(service.ErrFeedbackAlreadySubmitted))
		case errors.Is(err, service.ErrStudentNotFound):
			NotFound(c, GetErrorMessage(service.ErrStudentNotFound))
		case errors.Is(err, service.ErrScheduleNotFound):
			NotFound(c, GetErrorMessage(service.ErrScheduleNotFound))
		case errors.Is(err, domain.ErrRatingOutOfRange),
			errors.Is(err, domain.ErrWrongRatingCount):
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("feedback submit failed", zap.Error(err))
			InternalError(c, MsgFeedbackSubmitFailed)
		}
		return
	}

	Created(c, gin.H{"id": fb.ID})
}

// ListBySchedule 列出某次开课的全部反馈
func (h *FeedbackHandler) ListBySchedule(c *gin.Context) {
	list, err := h.feedback.ListBySchedule(c.Param("scheduleId"))
	if err != nil {
		h.log.Error("feedback list failed", zap.Error(err))
		InternalError(c, MsgFeedbackListFailed)
		return
	}
	Success(c, list)
}
