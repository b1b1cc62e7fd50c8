package app

import (
	"context"
	"fmt"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/config"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/reconcile"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/repository"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/service"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/feishu"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/gateway"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App 服务端与命令行共用的依赖
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	GW         *gateway.Gateway
	Redis      *redis.Client
	Repos      *repository.Repositories
	Reconciler *reconcile.Reconciler
	Orders     *service.OrderService
}

// Overrides 命令行覆盖配置
type Overrides struct {
	Policy  string
	Workers int
}

// InitLogger 初始化日志
func InitLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

// InitRedis 创建 Redis 客户端，未配置 host 时返回 nil
func InitRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// FitWorkers 每个对账 worker 同时占用一个事务连接和一个回填查询连接，
// 连接池上限不足时减少 worker 数；maxOpen <= 0 表示不限
func FitWorkers(maxOpen, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}
	if maxOpen <= 0 {
		return workers, nil
	}
	if maxOpen < 2 {
		return 0, fmt.Errorf("database.max_open_conns=%d: 对账至少需要 2 个连接", maxOpen)
	}
	if workers*2 > maxOpen {
		workers = maxOpen / 2
	}
	return workers, nil
}

// New 连接数据库并组装订单服务
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, ov Overrides) (*App, error) {
	policyName := cfg.Reconcile.FailurePolicy
	if ov.Policy != "" {
		policyName = ov.Policy
	}
	policy, err := reconcile.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}
	workers := cfg.Reconcile.Workers
	if ov.Workers > 0 {
		workers = ov.Workers
	}
	if workers < 1 {
		workers = 1
	}
	fitted, err := FitWorkers(cfg.Database.MaxOpenConns, workers)
	if err != nil {
		return nil, err
	}
	if fitted != workers {
		logger.Warn("Reconcile workers reduced to fit connection pool",
			zap.Int("requested", workers),
			zap.Int("workers", fitted),
			zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		)
		workers = fitted
	}

	gw, err := gateway.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := gw.Warm(ctx); err != nil {
		gw.Close()
		return nil, fmt.Errorf("数据库预热失败: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, GW: gw}
	a.Repos = repository.NewRepositories(gw)

	var related reconcile.RelatedReader = a.Repos.Related
	if rdb := InitRedis(cfg.Redis); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, related lookups go straight to database", zap.Error(err))
			rdb.Close()
		} else {
			a.Redis = rdb
			related = repository.NewCachedRelatedReader(a.Repos.Related, rdb, cfg.Reconcile.CacheTTL, logger)
		}
	}

	a.Reconciler = reconcile.NewReconciler(a.Repos.Order, related, logger, reconcile.Options{
		Policy:  policy,
		Workers: workers,
	})

	var opts []service.Option
	archiver, err := service.NewMinIOArchiver(cfg.MinIO)
	if err != nil {
		logger.Warn("MinIO archiver disabled", zap.Error(err))
	} else if archiver != nil {
		opts = append(opts, service.WithArchiver(archiver))
	}
	if cfg.Feishu.AppID != "" && cfg.Feishu.AlertChatID != "" {
		client := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		opts = append(opts, service.WithAlert(client, cfg.Feishu.AlertChatID))
	}

	a.Orders = service.NewOrderService(a.Repos.Order, a.Repos.Batch, a.Reconciler, logger, opts...)
	return a, nil
}

// Migrate 建表与索引
func (a *App) Migrate(ctx context.Context) error {
	return repository.Migrate(ctx, a.GW.DB())
}

// Close 释放连接
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.GW != nil {
		a.GW.Close()
	}
}
