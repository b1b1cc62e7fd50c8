package reconcile

import (
	"context"
	"fmt"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
)

// Identity 候选记录生效的身份键
type Identity struct {
	Kind  entity.KeyKind
	Value string
}

// String 用于加锁和日志的键文本
func (id Identity) String() string {
	if id.Kind == entity.KeyNone {
		return ""
	}
	return string(id.Kind) + ":" + id.Value
}

// IdentityOf 按类型定义的优先级取第一个在候选记录上出现的键
func IdentityOf(spec entity.KindSpec, c entity.Candidate) Identity {
	for _, k := range spec.Keys {
		switch k {
		case entity.KeyChildItem:
			if c.ChildItemID != "" {
				return Identity{Kind: k, Value: c.ChildItemID}
			}
		case entity.KeyPart:
			if c.PartID != "" {
				return Identity{Kind: k, Value: c.PartID}
			}
		case entity.KeyToolingPartName:
			if c.ToolingID != "" && c.PartName != "" {
				return Identity{Kind: k, Value: c.ToolingID + "|" + c.PartName}
			}
		case entity.KeyInventoryNumber:
			if c.InventoryNumber != "" {
				return Identity{Kind: k, Value: c.InventoryNumber}
			}
		}
	}
	return Identity{}
}

// ResolveExisting 查找候选记录对应的已有订单
// 只查询优先级最高的已出现键，未命中即视为新记录，不再降级
func ResolveExisting(ctx context.Context, tx OrderTx, spec entity.KindSpec, c entity.Candidate) (*entity.Order, Identity, error) {
	id := IdentityOf(spec, c)

	var (
		existing *entity.Order
		err      error
	)
	switch id.Kind {
	case entity.KeyNone:
		return nil, id, nil
	case entity.KeyChildItem:
		existing, err = tx.FindByChildItemID(ctx, c.ChildItemID)
	case entity.KeyPart:
		existing, err = tx.FindByPartID(ctx, c.PartID)
	case entity.KeyToolingPartName:
		existing, err = tx.FindByToolingPart(ctx, c.ToolingID, c.PartName)
	case entity.KeyInventoryNumber:
		existing, err = tx.FindByInventoryNumber(ctx, c.InventoryNumber)
	}
	if err != nil {
		return nil, id, fmt.Errorf("resolve %s: %w", id, err)
	}
	return existing, id, nil
}
