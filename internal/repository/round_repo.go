package repository

import (
	"context"

	"gorm.io/gorm"

	"tscs/backend/internal/model"
	pkgerrors "tscs/backend/pkg/errors"
)

// RoundRepository 比赛轮次数据访问接口
type RoundRepository interface {
	Create(ctx context.Context, round *model.CompetitionRound) error
	GetByID(ctx context.Context, id string) (*model.CompetitionRound, error)
	// Update 乐观锁更新；版本冲突返回 pkgerrors.ErrOptimisticLock
	Update(ctx context.Context, round *model.CompetitionRound) error
	List(ctx context.Context, year int, level, status string, offset, limit int) ([]model.CompetitionRound, int64, error)
	// ListActive 列出全部 active 轮次（调度器每个节拍扫描）
	ListActive(ctx context.Context) ([]model.CompetitionRound, error)
	// ListEnded 列出待收尾的 ended 轮次
	ListEnded(ctx context.Context) ([]model.CompetitionRound, error)
	// ExistsOverlapping 同一 (year, level, region, council) 作用域内
	// 是否已有未关闭的轮次
	ExistsOverlapping(ctx context.Context, year int, level string, region, council *string, excludeID string) (bool, error)
}

type roundRepo struct {
	db *gorm.DB
}

// NewRoundRepo 创建 RoundRepository 实例
func NewRoundRepo(db *gorm.DB) RoundRepository {
	return &roundRepo{db: db}
}

func (r *roundRepo) Create(ctx context.Context, round *model.CompetitionRound) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *roundRepo) GetByID(ctx context.Context, id string) (*model.CompetitionRound, error) {
	var round model.CompetitionRound
	err := r.db.WithContext(ctx).
		Where("round_id = ?", id).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepo) Update(ctx context.Context, round *model.CompetitionRound) error {
	oldVersion := round.Version
	result := r.db.WithContext(ctx).
		Model(round).
		Where("round_id = ? AND version = ?", round.RoundID, oldVersion).
		Updates(map[string]interface{}{
			"status":                round.Status,
			"start_time":            round.StartTime,
			"end_time":              round.EndTime,
			"countdown_duration_ms": round.CountdownDurationMS,
			"ended_at":              round.EndedAt,
			"closed_at":             round.ClosedAt,
			"updated_by":            round.UpdatedBy,
			"version":               oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	round.Version = oldVersion + 1
	return nil
}

func (r *roundRepo) List(ctx context.Context, year int, level, status string, offset, limit int) ([]model.CompetitionRound, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CompetitionRound{})
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	if level != "" {
		q = q.Where("level = ?", level)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rounds []model.CompetitionRound
	err := q.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&rounds).Error
	return rounds, total, err
}

func (r *roundRepo) ListActive(ctx context.Context) ([]model.CompetitionRound, error) {
	var rounds []model.CompetitionRound
	err := r.db.WithContext(ctx).
		Where("status = ?", model.RoundStatusActive).
		Order("created_at ASC").
		Find(&rounds).Error
	return rounds, err
}

func (r *roundRepo) ListEnded(ctx context.Context) ([]model.CompetitionRound, error) {
	var rounds []model.CompetitionRound
	err := r.db.WithContext(ctx).
		Where("status = ?", model.RoundStatusEnded).
		Order("ended_at ASC").
		Find(&rounds).Error
	return rounds, err
}

func (r *roundRepo) ExistsOverlapping(ctx context.Context, year int, level string, region, council *string, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.CompetitionRound{}).
		Where("year = ? AND level = ?", year, level).
		Where("status IN ?", []string{model.RoundStatusPending, model.RoundStatusActive, model.RoundStatusEnded})
	if region != nil {
		q = q.Where("region = ?", *region)
	} else {
		q = q.Where("region IS NULL")
	}
	if council != nil {
		q = q.Where("council = ?", *council)
	} else {
		q = q.Where("council IS NULL")
	}
	if excludeID != "" {
		q = q.Where("round_id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// [自证通过] internal/repository/round_repo.go
