package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Gateway 数据库访问网关
// 持有显式创建的连接池，所有语句经统一重试策略执行
type Gateway struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	retry   RetryPolicy
	minIdle int
	logger  *zap.Logger
}

// Open 建立连接池并按配置设置上限
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Gateway, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	policy := DefaultRetryPolicy()
	if cfg.RetryAttempts > 0 {
		policy.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryBackoff > 0 {
		policy.Backoff = LinearBackoff(cfg.RetryBackoff)
	}

	gw, err := New(db, policy, log)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		gw.sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		gw.sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	gw.sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	gw.sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	gw.minIdle = cfg.MinIdleConns

	return gw, nil
}

// New 基于已有 gorm 连接构造网关
func New(db *gorm.DB, policy RetryPolicy, log *zap.Logger) (*Gateway, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{db: db, sqlDB: sqlDB, retry: policy, logger: log}, nil
}

// DB 返回底层 gorm 连接
func (g *Gateway) DB() *gorm.DB {
	return g.db
}

// Policy 当前重试策略
func (g *Gateway) Policy() RetryPolicy {
	return g.retry
}

// Ping 健康检查
func (g *Gateway) Ping(ctx context.Context) error {
	return g.sqlDB.PingContext(ctx)
}

// Warm 预热连接池，提前建立 minIdle 个连接
func (g *Gateway) Warm(ctx context.Context) error {
	start := time.Now()
	if err := g.retry.Do(ctx, g.Ping); err != nil {
		return fmt.Errorf("warm up pool: %w", err)
	}

	conns := make([]*sql.Conn, 0, g.minIdle)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < g.minIdle; i++ {
		c, err := g.sqlDB.Conn(ctx)
		if err != nil {
			return fmt.Errorf("warm up pool: %w", err)
		}
		conns = append(conns, c)
	}

	g.logger.Info("Database pool warmed",
		zap.Int("connections", len(conns)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Close 释放连接池
func (g *Gateway) Close() error {
	return g.sqlDB.Close()
}

// Query 执行参数化查询并扫描到 dest
func (g *Gateway) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return g.retry.Do(ctx, func(ctx context.Context) error {
		return g.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
	})
}

// Exec 执行参数化语句，返回影响行数
func (g *Gateway) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var affected int64
	err := g.retry.Do(ctx, func(ctx context.Context) error {
		res := g.db.WithContext(ctx).Exec(query, args...)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// Run 在连接池上执行一组 gorm 读操作，按重试策略重放
func (g *Gateway) Run(ctx context.Context, fn func(db *gorm.DB) error) error {
	return g.retry.Do(ctx, func(ctx context.Context) error {
		return fn(g.db.WithContext(ctx))
	})
}

// Transaction 在单个事务中执行 fn，瞬时故障时整体重放
func (g *Gateway) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	attempt := 0
	return g.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := g.db.WithContext(ctx).Transaction(fn)
		if err != nil && attempt > 1 {
			g.logger.Debug("Transaction retry failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
}

// IsNotFound gorm 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
