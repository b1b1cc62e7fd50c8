package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/gateway"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options 对账参数
type Options struct {
	Policy  FailurePolicy
	Workers int
}

// Reconciler 订单对账编排：去重 → 逐条事务内解析、回填、比对、写入
type Reconciler struct {
	store    Store
	backfill *Backfiller
	logger   *zap.Logger
	policy   FailurePolicy
	workers  int
	newID    func() string
}

func NewReconciler(store Store, related RelatedReader, logger *zap.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Policy == "" {
		opts.Policy = PolicyIsolate
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Reconciler{
		store:    store,
		backfill: NewBackfiller(related, logger),
		logger:   logger,
		policy:   opts.Policy,
		workers:  opts.Workers,
		newID:    func() string { return uuid.New().String()[:32] },
	}
}

// Policy 当前失败策略
func (r *Reconciler) Policy() FailurePolicy {
	return r.policy
}

// outcome 单条记录处理结果
type outcome struct {
	result Result
	order  *entity.Order
}

// Reconcile 对一个批次执行对账，调用方须先完成 Validate
func (r *Reconciler) Reconcile(ctx context.Context, spec entity.KindSpec, candidates []entity.Candidate) (*Report, error) {
	start := time.Now()
	items, dropped := Dedupe(CanonicalizeAll(candidates))
	outcomes := make([]outcome, len(items))

	var err error
	if r.workers > 1 && len(items) > 1 {
		err = r.runPartitioned(ctx, spec, items, outcomes)
	} else {
		err = r.runSequential(ctx, spec, items, outcomes)
	}
	if err != nil {
		r.logger.Error("Reconcile aborted",
			zap.String("kind", string(spec.Kind)),
			zap.Int("total", len(candidates)),
			zap.Error(err),
		)
		return nil, err
	}

	report := &Report{
		Kind:    spec.Kind,
		Orders:  make([]entity.Order, 0, len(items)),
		Results: make([]Result, 0, len(items)),
	}
	report.Stats.Deduplicated = dropped
	for _, o := range outcomes {
		report.Results = append(report.Results, o.result)
		switch o.result.Action {
		case ActionInserted:
			report.Stats.Inserted++
		case ActionUpdated:
			report.Stats.Updated++
		case ActionSkipped:
			report.Stats.Skipped++
		case ActionFailed:
			report.Stats.Failed++
		}
		if o.order != nil {
			report.Orders = append(report.Orders, *o.order)
		}
	}

	r.logger.Info("Reconcile finished",
		zap.String("kind", string(spec.Kind)),
		zap.Int("total", len(candidates)),
		zap.Int("inserted", report.Stats.Inserted),
		zap.Int("updated", report.Stats.Updated),
		zap.Int("skipped", report.Stats.Skipped),
		zap.Int("failed", report.Stats.Failed),
		zap.Int("deduplicated", dropped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (r *Reconciler) runSequential(ctx context.Context, spec entity.KindSpec, items []Item, outcomes []outcome) error {
	for i, item := range items {
		out, err := r.process(ctx, spec, item)
		if err != nil && r.aborts(ctx, err) {
			return &RecordError{Index: item.Index, Err: err}
		}
		outcomes[i] = out
	}
	return nil
}

// aborts 重试耗尽的存储故障和已取消的请求总是中止整个批次，
// 其余单条失败按策略处理
func (r *Reconciler) aborts(ctx context.Context, err error) bool {
	if errors.Is(err, gateway.ErrTransient) || ctx.Err() != nil {
		return true
	}
	return r.policy == PolicyFailFast
}

// runPartitioned 按身份键分组，同键记录在同一 goroutine 内按提交顺序处理
func (r *Reconciler) runPartitioned(ctx context.Context, spec entity.KindSpec, items []Item, outcomes []outcome) error {
	var groups [][]int
	byKey := make(map[string]int)
	for i, item := range items {
		key := IdentityOf(spec, item.Candidate).String()
		if key == "" {
			groups = append(groups, []int{i})
			continue
		}
		if g, ok := byKey[key]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		byKey[key] = len(groups)
		groups = append(groups, []int{i})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			for _, i := range group {
				out, err := r.process(gctx, spec, items[i])
				if err != nil && r.aborts(gctx, err) {
					return &RecordError{Index: items[i].Index, Err: err}
				}
				outcomes[i] = out
			}
			return nil
		})
	}
	return g.Wait()
}

// process 单条候选记录：一个事务内加锁、解析、回填、比对、写入
func (r *Reconciler) process(ctx context.Context, spec entity.KindSpec, item Item) (outcome, error) {
	c := item.Candidate
	identity := IdentityOf(spec, c)
	res := Result{Index: item.Index, Key: identity.String()}

	var (
		action  Action
		order   entity.Order
		changed []string
	)
	err := r.store.WithinTx(ctx, spec, func(tx OrderTx) error {
		changed = nil
		if identity.Kind != entity.KeyNone {
			if err := tx.LockKey(ctx, string(spec.Kind)+"/"+identity.String()); err != nil {
				return fmt.Errorf("lock %s: %w", identity, err)
			}
		}

		existing, _, err := ResolveExisting(ctx, tx, spec, c)
		if err != nil {
			return err
		}

		derived := r.backfill.Resolve(ctx, c, existing)
		desired := Desired(c, derived)

		if existing == nil {
			desired.ID = r.newID()
			if desired.Status == "" {
				desired.Status = entity.OrderStatusPending
			}
			if err := tx.Insert(ctx, &desired); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
			action, order = ActionInserted, desired
			return nil
		}

		changed = ChangedFields(*existing, desired)
		if len(changed) == 0 {
			action, order = ActionSkipped, *existing
			return nil
		}

		merged := Merge(*existing, desired)
		if err := tx.Update(ctx, &merged); err != nil {
			return fmt.Errorf("update %s: %w", existing.ID, err)
		}
		action, order = ActionUpdated, merged
		return nil
	})
	if err != nil {
		r.logger.Warn("Reconcile record failed",
			zap.String("kind", string(spec.Kind)),
			zap.Int("index", item.Index),
			zap.String("key", res.Key),
			zap.Error(err),
		)
		res.Action = ActionFailed
		res.Error = err.Error()
		return outcome{result: res}, err
	}

	if action == ActionUpdated {
		r.logger.Debug("Order updated",
			zap.String("id", order.ID),
			zap.Strings("changed_fields", changed),
		)
	}
	res.Success = true
	res.Action = action
	res.ID = order.ID
	res.ChangedFields = changed
	return outcome{result: res, order: &order}, nil
}
