package model

// 竞赛层级：council < regional < national
const (
	LevelCouncil  = "council"
	LevelRegional = "regional"
	LevelNational = "national"
)

// NextLevel 返回晋级后的层级；national 为顶级，无可晋级层级
func NextLevel(level string) (string, bool) {
	switch level {
	case LevelCouncil:
		return LevelRegional, true
	case LevelRegional:
		return LevelNational, true
	default:
		return "", false
	}
}

// 参赛作品状态
const (
	SubmissionStatusPending     = "pending"
	SubmissionStatusSubmitted   = "submitted"
	SubmissionStatusUnderReview = "under_review"
	SubmissionStatusEvaluated   = "evaluated"
	SubmissionStatusApproved    = "approved"
	SubmissionStatusPromoted    = "promoted"
	SubmissionStatusEliminated  = "eliminated"
)

// Submission 参赛作品表 — 对应 submissions
// 一位教师在 (year, area_of_focus, class, subject) 下的一份参赛作品。
// level/status/average_score 仅由晋级事务或评分重算修改；核心层不删除记录。
type Submission struct {
	SubmissionID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	TeacherID    string  `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	Year         int     `gorm:"not null;index"                                 json:"year"`
	AreaOfFocus  string  `gorm:"type:varchar(100);not null"                     json:"area_of_focus"`
	Class        string  `gorm:"type:varchar(50);not null"                      json:"class"`
	Subject      string  `gorm:"type:varchar(100);not null"                     json:"subject"`
	Title        string  `gorm:"type:varchar(200);not null"                     json:"title"`
	VideoURL     *string `gorm:"type:text"                                      json:"video_url,omitempty"`
	Level        string  `gorm:"type:varchar(20);not null;default:'council'"    json:"level"`
	Status       string  `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Region       string  `gorm:"type:varchar(100);not null"                     json:"region"`
	Council      *string `gorm:"type:varchar(100)"                              json:"council,omitempty"` // council 级以上为空
	AverageScore float64 `gorm:"not null;default:0"                             json:"average_score"`
	Disqualified bool    `gorm:"not null;default:false"                         json:"disqualified"` // 永久标记
	VersionedModel
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// RankEligible 是否可进入排名：未取消资格且已完成评审（evaluated 及之后状态）
func (s *Submission) RankEligible() bool {
	if s.Disqualified {
		return false
	}
	switch s.Status {
	case SubmissionStatusEvaluated, SubmissionStatusApproved,
		SubmissionStatusPromoted, SubmissionStatusEliminated:
		return true
	default:
		return false
	}
}

// Terminal 是否已处于终态（promoted/eliminated 在所离开层级不可逆）
func (s *Submission) Terminal() bool {
	return s.Status == SubmissionStatusPromoted || s.Status == SubmissionStatusEliminated
}

// [自证通过] internal/model/submission.go
