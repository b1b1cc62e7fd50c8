package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	tooling map[string]*entity.ToolingInfo
	calls   int
	err     error
}

func (s *countingSource) FindTooling(ctx context.Context, id string) (*entity.ToolingInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.tooling[id], nil
}

func (s *countingSource) FindPart(ctx context.Context, id string) (*entity.ToolingPart, error) {
	s.calls++
	return nil, s.err
}

func (s *countingSource) FindChildItem(ctx context.Context, id string) (*entity.ChildItem, error) {
	s.calls++
	return nil, s.err
}

func (s *countingSource) FindChildItemByName(ctx context.Context, toolingID, name string) (*entity.ChildItem, error) {
	s.calls++
	return &entity.ChildItem{ID: "c1", ToolingID: toolingID, Name: name, RequiredDate: "2024-01-02"}, s.err
}

func newCacheFixture(t *testing.T) (*miniredis.Miniredis, *countingSource, *CachedRelatedReader) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	src := &countingSource{tooling: map[string]*entity.ToolingInfo{
		"T1": {ID: "T1", ProductionUnit: "一车间", ApplicantName: "王工"},
	}}
	return mr, src, NewCachedRelatedReader(src, rdb, time.Minute, nil)
}

func TestCachedRelatedReaderHitsCache(t *testing.T) {
	mr, src, reader := newCacheFixture(t)
	ctx := context.Background()

	first, err := reader.FindTooling(ctx, "T1")
	require.NoError(t, err)
	second, err := reader.FindTooling(ctx, "T1")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first.ProductionUnit, second.ProductionUnit)
	assert.True(t, mr.Exists(relatedCachePrefix+"tooling:T1"))
	assert.Equal(t, time.Minute, mr.TTL(relatedCachePrefix+"tooling:T1"))

	item, err := reader.FindChildItemByName(ctx, "T1", "Bolt")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", item.RequiredDate)
	assert.True(t, mr.Exists(relatedCachePrefix+"child_name:T1:Bolt"))
}

func TestCachedRelatedReaderDoesNotCacheMisses(t *testing.T) {
	mr, src, reader := newCacheFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		v, err := reader.FindTooling(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, v)
	}
	assert.Equal(t, 2, src.calls)
	assert.False(t, mr.Exists(relatedCachePrefix+"tooling:missing"))
}

func TestCachedRelatedReaderFallsBackWhenRedisDown(t *testing.T) {
	mr, src, reader := newCacheFixture(t)
	mr.Close()

	v, err := reader.FindTooling(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "王工", v.ApplicantName)
	assert.Equal(t, 1, src.calls)
}

func TestCachedRelatedReaderPropagatesSourceErrors(t *testing.T) {
	_, src, reader := newCacheFixture(t)
	src.err = errors.New("db down")

	_, err := reader.FindTooling(context.Background(), "T1")
	assert.Error(t, err)
}
