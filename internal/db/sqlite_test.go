package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/textrsa/internal/config"
	"github.com/udisondev/textrsa/internal/testutil"
)

func TestSQLiteKeyRepository(t *testing.T) {
	sqlDB := testutil.SetupSQLiteDB(t)
	repo := NewSQLiteKeyRepository(sqlDB)

	runKeyRepositoryContract(t, repo, func(t *testing.T) {
		t.Helper()
		_, err := sqlDB.Exec(`DELETE FROM keypairs`)
		require.NoError(t, err)
	})
}

func TestRunMigrations_SQLite(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)
	path := filepath.Join(t.TempDir(), "migrated.db")

	require.NoError(t, RunMigrations(ctx, config.DriverSQLite, path))
	// повторный прогон не должен падать
	require.NoError(t, RunMigrations(ctx, config.DriverSQLite, path))

	sqlDB, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var count int
	require.NoError(t, sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM keypairs`).Scan(&count))
	assert.Zero(t, count)
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	err := RunMigrations(context.Background(), "mysql", "irrelevant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestOpenSQLite_BadPath(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)
	_, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "missing", "dir", "keys.db"))
	assert.Error(t, err)
}
