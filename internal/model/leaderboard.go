package model

import (
	"fmt"
	"time"
)

// LocationKeyNational national 级的统一排名组键
const LocationKeyNational = "national"

// LocationKeyFor 生成排名组的地理键：
// council 级为 "region::council"，regional 级为 region，national 级为 "national"
func LocationKeyFor(level, region string, council *string) string {
	switch level {
	case LevelCouncil:
		c := ""
		if council != nil {
			c = *council
		}
		return region + "::" + c
	case LevelRegional:
		return region
	default:
		return LocationKeyNational
	}
}

// Leaderboard 排行榜快照表 — 对应 leaderboards
// 按 (year, area_of_focus, level, location_key) 唯一；council 级按 area_of_focus
// 进一步分组，因为晋级名额按学科领域独立计算。
// is_finalized 在轮次关闭时置位后永久生效，此后不再重算。
type Leaderboard struct {
	LeaderboardID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"leaderboard_id"`
	Year          int        `gorm:"not null;uniqueIndex:idx_lb_scope"              json:"year"`
	AreaOfFocus   string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_lb_scope" json:"area_of_focus"`
	Level         string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_lb_scope"  json:"level"`
	LocationKey   string     `gorm:"type:varchar(220);not null;uniqueIndex:idx_lb_scope" json:"location_key"`
	IsFinalized   bool       `gorm:"not null;default:false"                         json:"is_finalized"`
	GeneratedAt   *time.Time `gorm:""                                               json:"generated_at,omitempty"`
	Entries       []LeaderboardEntry `gorm:"foreignKey:LeaderboardID;references:LeaderboardID" json:"entries,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Leaderboard) TableName() string { return "leaderboards" }

// CacheKey 供缓存失效广播使用的快照键
func (l *Leaderboard) CacheKey() string {
	return fmt.Sprintf("%d:%s:%s:%s", l.Year, l.Level, l.LocationKey, l.AreaOfFocus)
}

// LeaderboardEntry 排行榜条目表 — 对应 leaderboard_entries
// 不变式：同一快照内 rank 为稠密的 1..N，按 (score desc, submitted_at asc) 排序
type LeaderboardEntry struct {
	EntryID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	LeaderboardID string    `gorm:"type:uuid;not null;index"                       json:"leaderboard_id"`
	SubmissionID  string    `gorm:"type:uuid;not null;index"                       json:"submission_id"`
	TeacherID     string    `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Rank          int       `gorm:"not null"                                       json:"rank"`
	AverageScore  float64   `gorm:"not null;default:0"                             json:"average_score"`
	Status        string    `gorm:"type:varchar(20);not null"                      json:"status"` // 镜像 Submission.Status
	SubmittedAt   time.Time `gorm:"not null"                                       json:"submitted_at"` // 作品创建时间（平分排序依据）
	BaseModel
}

// TableName 指定表名
func (LeaderboardEntry) TableName() string { return "leaderboard_entries" }

// [自证通过] internal/model/leaderboard.go
