package model

// 通知类型
const (
	NotificationTypePromoted   = "promoted"
	NotificationTypeEliminated = "eliminated"
	NotificationTypeAssigned   = "judge_assigned"
)

// Notification 通知消息表 — 对应 notifications
// 晋级/淘汰结果产生的教师通知事件由核心写入，
// 实际投递（邮件/短信）由外部通知系统消费本表完成。
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	Payload        JSONMap `gorm:"type:jsonb"                                     json:"payload,omitempty"` // {submission_id, new_level|eliminated, rank, average_score, total_in_group}
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(30)"                               json:"related_type,omitempty"` // submission | round | tie_breaking
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
