package gateway

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// lazyGateway 不建立连接的网关，只用于验证重试包装
func lazyGateway(t *testing.T) *Gateway {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=x dbname=x sslmode=disable"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	gw, err := New(db, fastPolicy(3), nil)
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	return gw
}

func TestRunRetriesTransientReads(t *testing.T) {
	gw := lazyGateway(t)

	calls := 0
	err := gw.Run(context.Background(), func(db *gorm.DB) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "57P01", Message: "terminating connection"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunDoesNotRetryNotFound(t *testing.T) {
	gw := lazyGateway(t)

	calls := 0
	err := gw.Run(context.Background(), func(db *gorm.DB) error {
		calls++
		return gorm.ErrRecordNotFound
	})
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, calls)
}
