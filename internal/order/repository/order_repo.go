package repository

import (
	"context"
	"errors"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/reconcile"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/gateway"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单仓库，表名由订单类型决定
type OrderRepository struct {
	gw *gateway.Gateway
}

func NewOrderRepository(gw *gateway.Gateway) *OrderRepository {
	return &OrderRepository{gw: gw}
}

// FindAll 查询订单列表
func (r *OrderRepository) FindAll(ctx context.Context, spec entity.KindSpec, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	var items []entity.Order
	var total int64

	query := r.gw.DB().WithContext(ctx).Table(spec.Table)

	if projectName := filters["project_name"]; projectName != "" {
		query = query.Where("project_name = ?", projectName)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if toolingID := filters["tooling_id"]; toolingID != "" {
		query = query.Where("tooling_id = ?", toolingID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("part_name ILIKE ? OR inventory_number ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找订单
func (r *OrderRepository) FindByID(ctx context.Context, spec entity.KindSpec, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.gw.DB().WithContext(ctx).Table(spec.Table).Where("id = ?", id).Take(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// WithinTx 单条候选记录的事务，瞬时故障由网关整体重放
func (r *OrderRepository) WithinTx(ctx context.Context, spec entity.KindSpec, fn func(tx reconcile.OrderTx) error) error {
	return r.gw.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(&orderTx{tx: tx, table: spec.Table})
	})
}

// orderTx 事务内的订单读写，查询均加 FOR UPDATE
type orderTx struct {
	tx    *gorm.DB
	table string
}

// LockKey 事务级咨询锁，串行化同一身份键的“查询-写入”
func (t *orderTx) LockKey(ctx context.Context, key string) error {
	return t.tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func (t *orderTx) findOne(ctx context.Context, where string, args ...interface{}) (*entity.Order, error) {
	var o entity.Order
	err := t.tx.WithContext(ctx).
		Table(t.table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(where, args...).
		Order("created_date ASC").
		Take(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (t *orderTx) FindByChildItemID(ctx context.Context, id string) (*entity.Order, error) {
	return t.findOne(ctx, "child_item_id = ?", id)
}

func (t *orderTx) FindByPartID(ctx context.Context, id string) (*entity.Order, error) {
	return t.findOne(ctx, "part_id = ?", id)
}

// FindByToolingPart 仅匹配 part_id 为空的行，避免与零件路径生成的订单交叉匹配
func (t *orderTx) FindByToolingPart(ctx context.Context, toolingID, partName string) (*entity.Order, error) {
	return t.findOne(ctx, "tooling_id = ? AND part_name = ? AND part_id IS NULL", toolingID, partName)
}

func (t *orderTx) FindByInventoryNumber(ctx context.Context, inventoryNumber string) (*entity.Order, error) {
	return t.findOne(ctx, "inventory_number = ?", inventoryNumber)
}

func (t *orderTx) Insert(ctx context.Context, order *entity.Order) error {
	return t.tx.WithContext(ctx).Table(t.table).Create(order).Error
}

func (t *orderTx) Update(ctx context.Context, order *entity.Order) error {
	return t.tx.WithContext(ctx).
		Table(t.table).
		Where("id = ?", order.ID).
		Select("*").
		Omit("id", "created_date").
		Updates(order).Error
}
