package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swim-admin/internal/model"
)

// SwapRequestRepository 换班申请数据访问接口
type SwapRequestRepository interface {
	List(ctx context.Context) ([]model.SwapRequest, error)
	Save(ctx context.Context, req *model.SwapRequest) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository 实例
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) List(ctx context.Context) ([]model.SwapRequest, error) {
	var list []model.SwapRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *swapRequestRepo) Save(ctx context.Context, req *model.SwapRequest) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swap_request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "resolved_at", "resolved_by"}),
		}).
		Create(req).Error
}

func (r *swapRequestRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.SwapRequest{}).Error
}
