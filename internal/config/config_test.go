package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("RECONCILE_FAILURE_POLICY", "fail_fast")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "fail_fast", cfg.Reconcile.FailurePolicy)
	assert.Equal(t, 3, cfg.Database.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Database.RetryBackoff)
	assert.Equal(t, 1, cfg.Reconcile.Workers)
}

func TestDSNIncludesTimeouts(t *testing.T) {
	cfg := DatabaseConfig{
		Host:             "localhost",
		Port:             5432,
		User:             "u",
		Password:         "p",
		DBName:           "d",
		SSLMode:          "disable",
		ConnectTimeout:   5 * time.Second,
		StatementTimeout: 1500 * time.Millisecond,
	}

	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable"))
	assert.Contains(t, dsn, "connect_timeout=5")
	assert.Contains(t, dsn, "statement_timeout=1500")

	cfg.ConnectTimeout = 0
	cfg.StatementTimeout = 0
	assert.NotContains(t, cfg.DSN(), "timeout")
}
