package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swim-admin/internal/model"
)

// UserRepository 人员数据访问接口
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Save 按主键插入或整行覆盖
	Save(ctx context.Context, user *model.User) error
	BatchSave(ctx context.Context, users []model.User) error
	Delete(ctx context.Context, id string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&users).Error
	return users, err
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

func (r *userRepo) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(user).Error
}

func (r *userRepo) BatchSave(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(users, 100).Error
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&model.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
