package reconcile

import (
	"context"
	"regexp"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"go.uber.org/zap"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Derived 回填字段
type Derived struct {
	DemandDate     string
	ProductionUnit string
	Applicant      string
}

// Backfiller 回填需求日期、生产单位、申请人
// 取值顺序：候选记录 > 已有订单 > 关联实体查询；查询失败只记日志
type Backfiller struct {
	related RelatedReader
	logger  *zap.Logger
}

func NewBackfiller(related RelatedReader, logger *zap.Logger) *Backfiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backfiller{related: related, logger: logger}
}

// Resolve existing 为 nil 表示新记录
func (b *Backfiller) Resolve(ctx context.Context, c entity.Candidate, existing *entity.Order) Derived {
	d := Derived{
		DemandDate:     c.DemandDate,
		ProductionUnit: c.ProductionUnit,
		Applicant:      c.Applicant,
	}
	if existing != nil {
		d.DemandDate = firstNonEmpty(d.DemandDate, existing.DemandDate)
		d.ProductionUnit = firstNonEmpty(d.ProductionUnit, existing.ProductionUnit)
		d.Applicant = firstNonEmpty(d.Applicant, existing.Applicant)
	}

	if d.DemandDate == "" {
		d.DemandDate = b.demandDate(ctx, c)
	}
	if (d.ProductionUnit == "" || d.Applicant == "") && c.ToolingID != "" {
		tooling, err := b.related.FindTooling(ctx, c.ToolingID)
		if err != nil {
			b.lookupFailed("tooling_info", c.ToolingID, err)
		} else if tooling != nil {
			d.ProductionUnit = firstNonEmpty(d.ProductionUnit, tooling.ProductionUnit)
			d.Applicant = firstNonEmpty(d.Applicant, tooling.ApplicantName)
		}
	}
	return d
}

func (b *Backfiller) demandDate(ctx context.Context, c entity.Candidate) string {
	switch {
	case c.PartID != "":
		part, err := b.related.FindPart(ctx, c.PartID)
		if err != nil {
			b.lookupFailed("parts_info", c.PartID, err)
			return ""
		}
		if part == nil {
			return ""
		}
		return ExtractDate(part.Notes)
	case c.ChildItemID != "":
		item, err := b.related.FindChildItem(ctx, c.ChildItemID)
		if err != nil {
			b.lookupFailed("child_items", c.ChildItemID, err)
			return ""
		}
		if item == nil {
			return ""
		}
		return item.RequiredDate
	case c.ToolingID != "" && c.PartName != "":
		item, err := b.related.FindChildItemByName(ctx, c.ToolingID, c.PartName)
		if err != nil {
			b.lookupFailed("child_items", c.ToolingID+"|"+c.PartName, err)
			return ""
		}
		if item == nil {
			return ""
		}
		return item.RequiredDate
	}
	return ""
}

func (b *Backfiller) lookupFailed(source, key string, err error) {
	b.logger.Warn("Backfill lookup failed",
		zap.String("source", source),
		zap.String("key", key),
		zap.Error(err),
	)
}

// ExtractDate 取文本中第一个 YYYY-MM-DD
func ExtractDate(text string) string {
	return datePattern.FindString(text)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
