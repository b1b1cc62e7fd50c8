package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions 全局参数
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats 允许的输出格式
var ValidFormats = []string{"text", "json"}

// Version 构建时注入
var Version = "dev"

// NewRootCommand 创建 toolingctl 根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "toolingctl",
		Short: "工装订单对账工具",
		Long:  "Operate the tooling order reconciliation engine: migrate tables and reconcile purchase or cutting order batches from files.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
