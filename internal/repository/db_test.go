package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-mesh/internal/config"
	"service-mesh/internal/repository"
)

func sqliteConfig(t *testing.T) config.Config {
	return config.Config{
		ServiceName: "test",
		Database: config.Database{
			Driver:      config.DriverSQLite,
			Name:        filepath.Join(t.TempDir(), "nested", "app.db"),
			PoolSize:    2,
			PoolTimeout: 5 * time.Second,
		},
	}
}

func TestOpenPoolsWithoutReplica(t *testing.T) {
	pools, err := repository.OpenPools(sqliteConfig(t))
	require.NoError(t, err)

	assert.False(t, pools.HasReplica())
	assert.Same(t, pools.Primary, pools.Read)
	assert.NoError(t, repository.Ping(context.Background(), pools.Primary))

	require.NoError(t, repository.MigrateUsers(pools.Primary))
	require.NoError(t, pools.Close())
	assert.Error(t, repository.Ping(context.Background(), pools.Primary))
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Driver = "oracle"
	_, err := repository.NewDB(cfg, "whatever")
	assert.Error(t, err)
}
