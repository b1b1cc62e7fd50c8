package cli

import (
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/app"
	"github.com/spf13/cobra"
)

// NewMigrateCommand 建表与索引
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create order tables and identity indexes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, app.Overrides{})
			if err != nil {
				return WrapExitError(ExitCommandError, "连接数据库失败", err)
			}
			defer closeApp(a)

			if err := a.Migrate(ctx); err != nil {
				return WrapExitError(ExitCommandError, "迁移失败", err)
			}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(map[string]string{"status": "ok"}, "migrated")
		},
	}
}
