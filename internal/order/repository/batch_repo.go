package repository

import (
	"context"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"gorm.io/gorm"
)

// BatchRepository 对账批次记录仓库
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create 记录批次
func (r *BatchRepository) Create(ctx context.Context, batch *entity.ReconcileBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// FindAll 查询批次记录
func (r *BatchRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ReconcileBatch, int64, error) {
	var items []entity.ReconcileBatch
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ReconcileBatch{})
	if kind := filters["kind"]; kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if operator := filters["operator"]; operator != "" {
		query = query.Where("operator = ?", operator)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
