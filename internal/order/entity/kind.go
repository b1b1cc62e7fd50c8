package entity

import "fmt"

// Kind 订单类型
type Kind string

const (
	KindPurchase Kind = "purchase" // 采购单
	KindCutting  Kind = "cutting"  // 下料单
)

// KeyKind 身份键类型，按优先级排列
type KeyKind string

const (
	KeyNone            KeyKind = ""
	KeyChildItem       KeyKind = "child_item_id"
	KeyPart            KeyKind = "part_id"
	KeyToolingPartName KeyKind = "tooling_part_name"
	KeyInventoryNumber KeyKind = "inventory_number"
)

// KindSpec 订单类型定义：表名、必填字段、身份键顺序
type KindSpec struct {
	Kind     Kind
	Label    string
	Table    string
	Required []string
	Keys     []KeyKind
}

var defaultKeys = []KeyKind{KeyChildItem, KeyPart, KeyToolingPartName, KeyInventoryNumber}

var kindSpecs = map[Kind]KindSpec{
	KindPurchase: {
		Kind:     KindPurchase,
		Label:    "采购单",
		Table:    "purchase_orders",
		Required: []string{FieldPartName, FieldQuantity, FieldUnit},
		Keys:     defaultKeys,
	},
	KindCutting: {
		Kind:     KindCutting,
		Label:    "下料单",
		Table:    "cutting_orders",
		Required: []string{FieldPartName, FieldQuantity, FieldUnit, FieldProjectName},
		Keys:     defaultKeys,
	},
}

// ParseKind 解析订单类型
func ParseKind(s string) (KindSpec, error) {
	spec, ok := kindSpecs[Kind(s)]
	if !ok {
		return KindSpec{}, fmt.Errorf("不支持的订单类型: %s", s)
	}
	return spec, nil
}

// MustKind 获取已知订单类型定义
func MustKind(k Kind) KindSpec {
	spec, ok := kindSpecs[k]
	if !ok {
		panic("unknown order kind: " + string(k))
	}
	return spec
}

// Kinds 全部订单类型
func Kinds() []KindSpec {
	return []KindSpec{kindSpecs[KindPurchase], kindSpecs[KindCutting]}
}
