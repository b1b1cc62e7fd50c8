package repository

import (
	"context"
	"fmt"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"gorm.io/gorm"
)

// Migrate 建表并为每种身份键建立部分唯一索引
// 订单表共用一个结构，索引按表名手工创建以免索引名冲突
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&entity.ToolingInfo{},
		&entity.ToolingPart{},
		&entity.ChildItem{},
		&entity.ReconcileBatch{},
	); err != nil {
		return fmt.Errorf("migrate related tables: %w", err)
	}

	for _, spec := range entity.Kinds() {
		if err := db.Table(spec.Table).AutoMigrate(&entity.Order{}); err != nil {
			return fmt.Errorf("migrate %s: %w", spec.Table, err)
		}
		for _, stmt := range indexes(spec.Table) {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create index on %s: %w", spec.Table, err)
			}
		}
	}
	return nil
}

// indexes 表名来自内部定义，不接受外部输入
// 带 child_item_id 的行只受标准件索引约束，与解析优先级一致
func indexes(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_inventory_number ON %[1]s (inventory_number)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_project_name ON %[1]s (project_name)`, table),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS uq_%[1]s_child_item ON %[1]s (child_item_id) WHERE child_item_id IS NOT NULL`, table),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS uq_%[1]s_part ON %[1]s (part_id) WHERE part_id IS NOT NULL AND child_item_id IS NULL`, table),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS uq_%[1]s_tooling_part ON %[1]s (tooling_id, part_name) WHERE tooling_id IS NOT NULL AND part_id IS NULL AND child_item_id IS NULL`, table),
	}
}
