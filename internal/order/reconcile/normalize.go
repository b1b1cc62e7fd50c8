package reconcile

import (
	"strings"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"golang.org/x/text/width"
)

// canonical 去除首尾空白并将全角字符折算为半角
func canonical(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.TrimSpace(width.Narrow.String(s))
}

// Canonicalize 规范化身份字段，保证不同输入法录入的同一编号解析到同一个键
func Canonicalize(c entity.Candidate) entity.Candidate {
	c.InventoryNumber = canonical(c.InventoryNumber)
	c.PartName = canonical(c.PartName)
	c.ToolingID = canonical(c.ToolingID)
	c.ChildItemID = canonical(c.ChildItemID)
	c.PartID = canonical(c.PartID)
	c.DemandDate = strings.TrimSpace(c.DemandDate)
	c.RequiredDate = strings.TrimSpace(c.RequiredDate)
	return c
}

// CanonicalizeAll 规范化整个批次
func CanonicalizeAll(candidates []entity.Candidate) []entity.Candidate {
	out := make([]entity.Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = Canonicalize(c)
	}
	return out
}
