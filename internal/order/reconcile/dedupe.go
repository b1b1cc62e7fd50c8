package reconcile

import "github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"

// Item 去重后的候选记录，Index 为原始下标
type Item struct {
	Index     int
	Candidate entity.Candidate
}

type dedupeKey struct {
	inventoryNumber string
	partID          string
}

// Dedupe 按 (inventory_number, part_id) 折叠批内重复，保留首条
// 两者均为空的记录不参与折叠
func Dedupe(candidates []entity.Candidate) ([]Item, int) {
	seen := make(map[dedupeKey]struct{}, len(candidates))
	items := make([]Item, 0, len(candidates))
	dropped := 0

	for i, c := range candidates {
		key := dedupeKey{inventoryNumber: c.InventoryNumber, partID: c.PartID}
		if key.inventoryNumber != "" || key.partID != "" {
			if _, ok := seen[key]; ok {
				dropped++
				continue
			}
			seen[key] = struct{}{}
		}
		items = append(items, Item{Index: i, Candidate: c})
	}
	return items, dropped
}
