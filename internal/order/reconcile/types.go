package reconcile

import (
	"context"
	"fmt"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
)

// RelatedReader 关联实体只读查询，未找到返回 nil, nil
type RelatedReader interface {
	FindTooling(ctx context.Context, id string) (*entity.ToolingInfo, error)
	FindPart(ctx context.Context, id string) (*entity.ToolingPart, error)
	FindChildItem(ctx context.Context, id string) (*entity.ChildItem, error)
	FindChildItemByName(ctx context.Context, toolingID, name string) (*entity.ChildItem, error)
}

// OrderTx 单条候选记录事务内的读写操作
// Find* 在事务内加行锁，未找到返回 nil, nil
type OrderTx interface {
	LockKey(ctx context.Context, key string) error
	FindByChildItemID(ctx context.Context, id string) (*entity.Order, error)
	FindByPartID(ctx context.Context, id string) (*entity.Order, error)
	FindByToolingPart(ctx context.Context, toolingID, partName string) (*entity.Order, error)
	FindByInventoryNumber(ctx context.Context, inventoryNumber string) (*entity.Order, error)
	Insert(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
}

// Store 订单存储，WithinTx 为每条候选记录开启一个事务
type Store interface {
	WithinTx(ctx context.Context, spec entity.KindSpec, fn func(tx OrderTx) error) error
}

// Action 单条记录处理结果
type Action string

const (
	ActionInserted Action = "inserted"
	ActionUpdated  Action = "updated"
	ActionSkipped  Action = "skipped"
	ActionFailed   Action = "failed"
)

// FailurePolicy 单条记录持久化失败时的批次处理策略
type FailurePolicy string

const (
	// PolicyIsolate 记录失败并继续处理其余记录
	PolicyIsolate FailurePolicy = "isolate"
	// PolicyFailFast 首个失败即中止整个批次
	PolicyFailFast FailurePolicy = "fail_fast"
)

// ParsePolicy 解析失败策略，空值取 isolate
func ParsePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyIsolate:
		return PolicyIsolate, nil
	case PolicyFailFast:
		return PolicyFailFast, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", s)
}

// Stats 批次统计
type Stats struct {
	Inserted     int `json:"inserted"`
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	Deduplicated int `json:"deduplicated"`
}

// Result 单条记录结果，Index 为提交批次中的原始下标
type Result struct {
	Index         int      `json:"index"`
	Success       bool     `json:"success"`
	Action        Action   `json:"action"`
	ID            string   `json:"id,omitempty"`
	Key           string   `json:"key,omitempty"`
	ChangedFields []string `json:"changed_fields,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Report 批次对账结果
type Report struct {
	Kind    entity.Kind    `json:"kind"`
	Orders  []entity.Order `json:"orders"`
	Stats   Stats          `json:"stats"`
	Results []Result       `json:"results"`
}

// Failures 失败记录
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// RecordError fail_fast 策略下中止批次的错误
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("第 %d 条记录处理失败: %v", e.Index+1, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
