package cli

import (
	"context"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/app"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/config"
	"github.com/joho/godotenv"
)

// openApp 加载配置并连接数据库
func openApp(ctx context.Context, opts *RootOptions, ov app.Overrides) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !opts.Verbose {
		cfg.Log.Level = "warn"
	}
	logger, err := app.InitLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger, ov)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return a, nil
}

func closeApp(a *app.App) {
	a.Close()
	_ = a.Logger.Sync()
}
