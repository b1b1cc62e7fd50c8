package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
)

// memStore 内存订单存储，事务失败时回滚到快照
type memStore struct {
	mu      sync.Mutex
	tables  map[string][]entity.Order
	writes  int
	failOn  func(op string, o *entity.Order) error
	lockLog []string
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string][]entity.Order)}
}

func (s *memStore) WithinTx(ctx context.Context, spec entity.KindSpec, fn func(tx OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := append([]entity.Order(nil), s.tables[spec.Table]...)
	writes := s.writes
	if err := fn(&memTx{store: s, table: spec.Table}); err != nil {
		s.tables[spec.Table] = snapshot
		s.writes = writes
		return err
	}
	return nil
}

func (s *memStore) rows(spec entity.KindSpec) []entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Order(nil), s.tables[spec.Table]...)
}

func (s *memStore) seed(spec entity.KindSpec, o entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[spec.Table] = append(s.tables[spec.Table], o)
}

type memTx struct {
	store *memStore
	table string
}

func (t *memTx) LockKey(ctx context.Context, key string) error {
	t.store.lockLog = append(t.store.lockLog, key)
	return nil
}

func (t *memTx) find(match func(o entity.Order) bool) (*entity.Order, error) {
	for _, o := range t.store.tables[t.table] {
		if match(o) {
			found := o
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memTx) FindByChildItemID(ctx context.Context, id string) (*entity.Order, error) {
	return t.find(func(o entity.Order) bool { return entity.StrVal(o.ChildItemID) == id })
}

func (t *memTx) FindByPartID(ctx context.Context, id string) (*entity.Order, error) {
	return t.find(func(o entity.Order) bool { return entity.StrVal(o.PartID) == id })
}

func (t *memTx) FindByToolingPart(ctx context.Context, toolingID, partName string) (*entity.Order, error) {
	return t.find(func(o entity.Order) bool {
		return o.PartID == nil && entity.StrVal(o.ToolingID) == toolingID && o.PartName == partName
	})
}

func (t *memTx) FindByInventoryNumber(ctx context.Context, inventoryNumber string) (*entity.Order, error) {
	return t.find(func(o entity.Order) bool { return o.InventoryNumber == inventoryNumber })
}

func (t *memTx) Insert(ctx context.Context, o *entity.Order) error {
	if t.store.failOn != nil {
		if err := t.store.failOn("insert", o); err != nil {
			return err
		}
	}
	t.store.tables[t.table] = append(t.store.tables[t.table], *o)
	t.store.writes++
	return nil
}

func (t *memTx) Update(ctx context.Context, o *entity.Order) error {
	if t.store.failOn != nil {
		if err := t.store.failOn("update", o); err != nil {
			return err
		}
	}
	rows := t.store.tables[t.table]
	for i := range rows {
		if rows[i].ID == o.ID {
			rows[i] = *o
			t.store.writes++
			return nil
		}
	}
	return errors.New("row not found")
}

// fakeRelated 关联实体桩
type fakeRelated struct {
	tooling    map[string]*entity.ToolingInfo
	parts      map[string]*entity.ToolingPart
	childItems map[string]*entity.ChildItem
	err        error
	calls      int
}

func newFakeRelated() *fakeRelated {
	return &fakeRelated{
		tooling:    map[string]*entity.ToolingInfo{},
		parts:      map[string]*entity.ToolingPart{},
		childItems: map[string]*entity.ChildItem{},
	}
}

func (f *fakeRelated) FindTooling(ctx context.Context, id string) (*entity.ToolingInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tooling[id], nil
}

func (f *fakeRelated) FindPart(ctx context.Context, id string) (*entity.ToolingPart, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.parts[id], nil
}

func (f *fakeRelated) FindChildItem(ctx context.Context, id string) (*entity.ChildItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.childItems[id], nil
}

func (f *fakeRelated) FindChildItemByName(ctx context.Context, toolingID, name string) (*entity.ChildItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, item := range f.childItems {
		if item.ToolingID == toolingID && item.Name == name {
			return item, nil
		}
	}
	return nil, nil
}
