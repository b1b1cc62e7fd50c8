package reconcile

import (
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/shopspring/decimal"
)

// ChangedFields 返回 existing 与 desired 不同的比对字段
// nil 与空串视为相同，数值按大小比较；状态和身份 id 只在候选记录提供时参与比对
func ChangedFields(existing, desired entity.Order) []string {
	var changed []string
	text := func(field, a, b string) {
		if a != b {
			changed = append(changed, field)
		}
	}
	supplied := func(field string, a, b *string) {
		if b != nil && entity.StrVal(a) != *b {
			changed = append(changed, field)
		}
	}
	num := func(field string, a, b decimal.NullDecimal) {
		if !sameDecimal(a, b) {
			changed = append(changed, field)
		}
	}

	text(entity.FieldInventoryNumber, existing.InventoryNumber, desired.InventoryNumber)
	text(entity.FieldProjectName, existing.ProjectName, desired.ProjectName)
	text(entity.FieldPartName, existing.PartName, desired.PartName)
	num(entity.FieldQuantity,
		decimal.NullDecimal{Decimal: existing.Quantity, Valid: true},
		decimal.NullDecimal{Decimal: desired.Quantity, Valid: true})
	text(entity.FieldUnit, existing.Unit, desired.Unit)
	text(entity.FieldModel, existing.Model, desired.Model)
	text(entity.FieldSupplier, existing.Supplier, desired.Supplier)
	text(entity.FieldRequiredDate, existing.RequiredDate, desired.RequiredDate)
	text(entity.FieldRemark, existing.Remark, desired.Remark)
	num(entity.FieldWeight, existing.Weight, desired.Weight)
	num(entity.FieldTotalPrice, existing.TotalPrice, desired.TotalPrice)
	text(entity.FieldDemandDate, existing.DemandDate, desired.DemandDate)
	text(entity.FieldProductionUnit, existing.ProductionUnit, desired.ProductionUnit)
	text(entity.FieldApplicant, existing.Applicant, desired.Applicant)
	if desired.Status != "" {
		text(entity.FieldStatus, existing.Status, desired.Status)
	}
	supplied(entity.FieldToolingID, existing.ToolingID, desired.ToolingID)
	supplied(entity.FieldChildItemID, existing.ChildItemID, desired.ChildItemID)
	supplied(entity.FieldPartID, existing.PartID, desired.PartID)

	return changed
}

func sameDecimal(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

// Desired 由候选记录和回填结果构造目标订单，数值按列精度取整
func Desired(c entity.Candidate, d Derived) entity.Order {
	o := entity.Order{
		InventoryNumber: c.InventoryNumber,
		ProjectName:     c.ProjectName,
		PartName:        c.PartName,
		Unit:            c.Unit,
		Model:           c.Model,
		Supplier:        c.Supplier,
		RequiredDate:    c.RequiredDate,
		Remark:          c.Remark,
		Weight:          scaled(entity.NullDecimal(c.Weight)),
		TotalPrice:      scaled(entity.NullDecimal(c.TotalPrice)),
		DemandDate:      d.DemandDate,
		ProductionUnit:  d.ProductionUnit,
		Applicant:       d.Applicant,
		Status:          c.Status,
		ToolingID:       entity.StrPtr(c.ToolingID),
		ChildItemID:     entity.StrPtr(c.ChildItemID),
		PartID:          entity.StrPtr(c.PartID),
	}
	if c.Quantity != nil {
		o.Quantity = c.Quantity.Round(entity.NumericScale)
	}
	return o
}

func scaled(d decimal.NullDecimal) decimal.NullDecimal {
	if d.Valid {
		d.Decimal = d.Decimal.Round(entity.NumericScale)
	}
	return d
}

// Merge 将目标值写入已有订单，保留主键、创建时间和未提供的身份/状态字段
func Merge(existing, desired entity.Order) entity.Order {
	merged := desired
	merged.ID = existing.ID
	merged.CreatedDate = existing.CreatedDate
	if merged.Status == "" {
		merged.Status = existing.Status
	}
	if merged.ToolingID == nil {
		merged.ToolingID = existing.ToolingID
	}
	if merged.ChildItemID == nil {
		merged.ChildItemID = existing.ChildItemID
	}
	if merged.PartID == nil {
		merged.PartID = existing.PartID
	}
	return merged
}
