package dto

// ── 评审模块 DTO ──

// SubmitEvaluationRequest 评委提交评分请求
type SubmitEvaluationRequest struct {
	SubmissionID string             `json:"submission_id" binding:"required,uuid"`
	Scores       map[string]float64 `json:"scores"        binding:"required,min=1"`
	Comments     *string            `json:"comments"      binding:"omitempty,max=2000"`
}

// EvaluationResponse 评审记录响应
type EvaluationResponse struct {
	ID           string             `json:"id"`
	SubmissionID string             `json:"submission_id"`
	JudgeID      string             `json:"judge_id"`
	Scores       map[string]float64 `json:"scores"`
	AverageScore float64            `json:"average_score"`
	Comments     *string            `json:"comments,omitempty"`
	CreatedAt    string             `json:"created_at"`
}

// [自证通过] internal/dto/evaluation.go
