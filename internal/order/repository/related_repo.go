package repository

import (
	"context"
	"errors"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/gateway"
	"gorm.io/gorm"
)

// RelatedRepository 工装、零件、标准件只读查询，经网关重试，未找到返回 nil, nil
type RelatedRepository struct {
	gw *gateway.Gateway
}

func NewRelatedRepository(gw *gateway.Gateway) *RelatedRepository {
	return &RelatedRepository{gw: gw}
}

func (r *RelatedRepository) FindTooling(ctx context.Context, id string) (*entity.ToolingInfo, error) {
	var t entity.ToolingInfo
	err := r.gw.Run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).Take(&t).Error
	})
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &t, nil
}

func (r *RelatedRepository) FindPart(ctx context.Context, id string) (*entity.ToolingPart, error) {
	var p entity.ToolingPart
	err := r.gw.Run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).Take(&p).Error
	})
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &p, nil
}

func (r *RelatedRepository) FindChildItem(ctx context.Context, id string) (*entity.ChildItem, error) {
	var c entity.ChildItem
	err := r.gw.Run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).Take(&c).Error
	})
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &c, nil
}

// FindChildItemByName 按 (tooling_id, name) 查标准件
func (r *RelatedRepository) FindChildItemByName(ctx context.Context, toolingID, name string) (*entity.ChildItem, error) {
	var c entity.ChildItem
	err := r.gw.Run(ctx, func(db *gorm.DB) error {
		return db.Where("tooling_id = ? AND name = ?", toolingID, name).
			Order("created_at ASC").
			Take(&c).Error
	})
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &c, nil
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
