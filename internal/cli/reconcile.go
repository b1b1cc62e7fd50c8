package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/app"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/reconcile"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/service"
	"github.com/spf13/cobra"
)

// ReconcileOptions reconcile 命令参数
type ReconcileOptions struct {
	Kind     string
	File     string
	Policy   string
	Workers  int
	Operator string
}

// NewReconcileCommand 从 JSON 文件提交一个订单批次
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a batch of orders from a JSON file",
		Long: `Reconcile a batch of purchase or cutting orders.

The file holds either {"orders": [...]} or a bare array of order objects.
Use "-" to read from stdin.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "order kind (purchase|cutting)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "path to the batch JSON file")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "failure policy (isolate|fail_fast), defaults to config")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers, defaults to config")
	cmd.Flags().StringVar(&opts.Operator, "operator", "toolingctl", "operator recorded on the batch")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runReconcile(cmd *cobra.Command, rootOpts *RootOptions, opts *ReconcileOptions) error {
	spec, err := entity.ParseKind(opts.Kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "订单类型无效", err)
	}
	if opts.Policy != "" {
		if _, err := reconcile.ParsePolicy(opts.Policy); err != nil {
			return WrapExitError(ExitCommandError, "失败策略无效", err)
		}
	}

	orders, err := readBatchFile(opts.File, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "读取批次文件失败", err)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, rootOpts, app.Overrides{Policy: opts.Policy, Workers: opts.Workers})
	if err != nil {
		return WrapExitError(ExitCommandError, "连接数据库失败", err)
	}
	defer closeApp(a)

	report, err := a.Orders.ReconcileBatch(ctx, service.BatchInput{
		Spec:     spec,
		Orders:   orders,
		Operator: opts.Operator,
	})
	if err != nil {
		var verr *reconcile.ValidationError
		if errors.As(err, &verr) {
			return WrapExitError(ExitCommandError, "批次校验失败", err)
		}
		return WrapExitError(ExitCommandError, "对账失败", err)
	}

	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	if err := f.Emit(report, summarize(spec, report)); err != nil {
		return err
	}
	if report.Stats.Failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d 条记录处理失败", report.Stats.Failed)}
	}
	return nil
}

// readBatchFile 支持 {"orders": [...]} 与裸数组两种格式
func readBatchFile(path string, stdin io.Reader) ([]entity.Candidate, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var orders []entity.Candidate
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, fmt.Errorf("解析订单数组失败: %w", err)
		}
		return orders, nil
	}

	var req service.BatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("解析批次失败: %w", err)
	}
	return req.Orders, nil
}

func summarize(spec entity.KindSpec, report *reconcile.Report) string {
	s := report.Stats
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s: inserted=%d updated=%d skipped=%d failed=%d deduplicated=%d",
		spec.Label, s.Inserted, s.Updated, s.Skipped, s.Failed, s.Deduplicated)
	for _, r := range report.Failures() {
		fmt.Fprintf(&buf, "\n  #%d %s: %s", r.Index, r.Key, r.Error)
	}
	return buf.String()
}
