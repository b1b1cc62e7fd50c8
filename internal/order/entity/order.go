package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 订单状态
const (
	OrderStatusPending = "pending"
)

// 比对/校验使用的字段名
const (
	FieldInventoryNumber = "inventory_number"
	FieldProjectName     = "project_name"
	FieldPartName        = "part_name"
	FieldQuantity        = "quantity"
	FieldUnit            = "unit"
	FieldModel           = "model"
	FieldSupplier        = "supplier"
	FieldRequiredDate    = "required_date"
	FieldRemark          = "remark"
	FieldWeight          = "weight"
	FieldTotalPrice      = "total_price"
	FieldDemandDate      = "demand_date"
	FieldProductionUnit  = "production_unit"
	FieldApplicant       = "applicant"
	FieldStatus          = "status"
	FieldToolingID       = "tooling_id"
	FieldChildItemID     = "child_item_id"
	FieldPartID          = "part_id"
)

// NumericScale 数量、重量、金额列的小数位数
const NumericScale = 4

// Candidate 待入库的订单行
type Candidate struct {
	InventoryNumber string           `json:"inventory_number"`
	ProjectName     string           `json:"project_name"`
	PartName        string           `json:"part_name"`
	Quantity        *decimal.Decimal `json:"quantity"`
	Unit            string           `json:"unit"`
	Model           string           `json:"model"`
	Supplier        string           `json:"supplier"`
	RequiredDate    string           `json:"required_date"`
	Remark          string           `json:"remark"`
	Weight          *decimal.Decimal `json:"weight,omitempty"`
	TotalPrice      *decimal.Decimal `json:"total_price,omitempty"`
	ProductionUnit  string           `json:"production_unit,omitempty"`
	Applicant       string           `json:"applicant,omitempty"`
	DemandDate      string           `json:"demand_date,omitempty"`
	Status          string           `json:"status,omitempty"`

	ToolingID   string `json:"tooling_id,omitempty"`
	ChildItemID string `json:"child_item_id,omitempty"`
	PartID      string `json:"part_id,omitempty"`
}

// Order 已入库订单（采购单、下料单共用结构，按类型落不同的表）
type Order struct {
	ID              string              `json:"id" gorm:"primaryKey;size:32"`
	InventoryNumber string              `json:"inventory_number" gorm:"size:100"`
	ProjectName     string              `json:"project_name" gorm:"size:200"`
	PartName        string              `json:"part_name" gorm:"size:200"`
	Quantity        decimal.Decimal     `json:"quantity" gorm:"type:numeric(18,4);not null;default:0"`
	Unit            string              `json:"unit" gorm:"size:20"`
	Model           string              `json:"model" gorm:"size:200"`
	Supplier        string              `json:"supplier" gorm:"size:200"`
	RequiredDate    string              `json:"required_date" gorm:"size:10"`
	Remark          string              `json:"remark" gorm:"type:text"`
	Weight          decimal.NullDecimal `json:"weight" gorm:"type:numeric(18,4)"`
	TotalPrice      decimal.NullDecimal `json:"total_price" gorm:"type:numeric(18,4)"`
	ProductionUnit  string              `json:"production_unit" gorm:"size:200"`
	Applicant       string              `json:"applicant" gorm:"size:100"`
	DemandDate      string              `json:"demand_date" gorm:"size:10"`
	Status          string              `json:"status" gorm:"size:20;default:pending"`

	ToolingID   *string `json:"tooling_id" gorm:"size:32"`
	ChildItemID *string `json:"child_item_id" gorm:"size:32"`
	PartID      *string `json:"part_id" gorm:"size:32"`

	CreatedDate time.Time `json:"created_date" gorm:"autoCreateTime"`
	UpdatedDate time.Time `json:"updated_date" gorm:"autoUpdateTime"`
}

// StrPtr 空串转 nil
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal nil 转空串
func StrVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullDecimal 可选数值转列值
func NullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
