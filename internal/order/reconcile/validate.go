package reconcile

import (
	"fmt"
	"strings"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
)

// FieldProblem 单条记录缺失的必填字段
type FieldProblem struct {
	Index   int      `json:"index"`
	Missing []string `json:"missing"`
}

// ValidationError 批次校验失败，整个批次不入库
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "批次为空"
	}
	p := e.Problems[0]
	msg := fmt.Sprintf("第 %d 条记录缺少必填字段: %s", p.Index+1, strings.Join(p.Missing, ", "))
	if len(e.Problems) > 1 {
		msg += fmt.Sprintf("（共 %d 条记录不完整）", len(e.Problems))
	}
	return msg
}

// Validate 在任何持久化之前校验整个批次
func Validate(spec entity.KindSpec, candidates []entity.Candidate) error {
	if len(candidates) == 0 {
		return &ValidationError{}
	}

	var problems []FieldProblem
	for i, c := range candidates {
		var missing []string
		for _, field := range spec.Required {
			if !hasField(c, field) {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			problems = append(problems, FieldProblem{Index: i, Missing: missing})
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func hasField(c entity.Candidate, field string) bool {
	switch field {
	case entity.FieldPartName:
		return strings.TrimSpace(c.PartName) != ""
	case entity.FieldQuantity:
		return c.Quantity != nil && c.Quantity.Round(entity.NumericScale).IsPositive()
	case entity.FieldUnit:
		return strings.TrimSpace(c.Unit) != ""
	case entity.FieldProjectName:
		return strings.TrimSpace(c.ProjectName) != ""
	case entity.FieldInventoryNumber:
		return strings.TrimSpace(c.InventoryNumber) != ""
	}
	return true
}
