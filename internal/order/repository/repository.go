package repository

import (
	"errors"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/gateway"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 订单仓库集合
type Repositories struct {
	Order   *OrderRepository
	Related *RelatedRepository
	Batch   *BatchRepository
}

// NewRepositories 创建订单仓库集合
func NewRepositories(gw *gateway.Gateway) *Repositories {
	return &Repositories{
		Order:   NewOrderRepository(gw),
		Related: NewRelatedRepository(gw),
		Batch:   NewBatchRepository(gw.DB()),
	}
}
