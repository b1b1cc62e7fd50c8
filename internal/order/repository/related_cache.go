package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const relatedCachePrefix = "tooling:related:"

// relatedSource 关联实体数据源
type relatedSource interface {
	FindTooling(ctx context.Context, id string) (*entity.ToolingInfo, error)
	FindPart(ctx context.Context, id string) (*entity.ToolingPart, error)
	FindChildItem(ctx context.Context, id string) (*entity.ChildItem, error)
	FindChildItemByName(ctx context.Context, toolingID, name string) (*entity.ChildItem, error)
}

// CachedRelatedReader 关联实体查询的 Redis 旁路缓存
// 只缓存命中结果；Redis 故障时直接回源
type CachedRelatedReader struct {
	next   relatedSource
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRelatedReader(next relatedSource, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedRelatedReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRelatedReader{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedRelatedReader) FindTooling(ctx context.Context, id string) (*entity.ToolingInfo, error) {
	return cached(ctx, c, "tooling:"+id, func() (*entity.ToolingInfo, error) {
		return c.next.FindTooling(ctx, id)
	})
}

func (c *CachedRelatedReader) FindPart(ctx context.Context, id string) (*entity.ToolingPart, error) {
	return cached(ctx, c, "part:"+id, func() (*entity.ToolingPart, error) {
		return c.next.FindPart(ctx, id)
	})
}

func (c *CachedRelatedReader) FindChildItem(ctx context.Context, id string) (*entity.ChildItem, error) {
	return cached(ctx, c, "child:"+id, func() (*entity.ChildItem, error) {
		return c.next.FindChildItem(ctx, id)
	})
}

func (c *CachedRelatedReader) FindChildItemByName(ctx context.Context, toolingID, name string) (*entity.ChildItem, error) {
	return cached(ctx, c, "child_name:"+toolingID+":"+name, func() (*entity.ChildItem, error) {
		return c.next.FindChildItemByName(ctx, toolingID, name)
	})
}

func cached[T any](ctx context.Context, c *CachedRelatedReader, key string, load func() (*T, error)) (*T, error) {
	full := relatedCachePrefix + key

	raw, err := c.rdb.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Related cache read failed", zap.String("key", full), zap.Error(err))
	}

	v, err := load()
	if err != nil || v == nil {
		return v, err
	}

	if data, jsonErr := json.Marshal(v); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, full, data, c.ttl).Err(); setErr != nil {
			c.logger.Warn("Related cache write failed", zap.String("key", full), zap.Error(setErr))
		}
	}
	return v, nil
}
