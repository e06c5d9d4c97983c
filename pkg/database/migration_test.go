package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newTestDB(t *testing.T) DB {
	t.Helper()

	db, err := Connect(context.Background(), testLogger(), Config{
		Path:         filepath.Join(t.TempDir(), "test.sqlite"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrationService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesPendingAndRecordsVersions", func(t *testing.T) {
		db := newTestDB(t)
		ms := NewMigrationService(db, testLogger(), []Migration{
			{
				Version:     1,
				Description: "projects table",
				Up:          `CREATE TABLE IF NOT EXISTS projects (id TEXT PRIMARY KEY, name TEXT NOT NULL);`,
			},
		})

		require.NoError(t, ms.Run(ctx))

		current, err := ms.CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, current)

		applied, err := ms.Applied(ctx)
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.Equal(t, 1, applied[0].Version)
		assert.False(t, applied[0].AppliedAt.IsZero())

		// the migrated table is usable
		_, err = db.ExecContext(ctx, "INSERT INTO projects (id, name) VALUES ('p1', 'api')")
		require.NoError(t, err)
	})

	t.Run("SecondRunIsNoOp", func(t *testing.T) {
		db := newTestDB(t)
		ms := NewMigrationService(db, testLogger(), []Migration{
			{Version: 1, Description: "t1", Up: `CREATE TABLE IF NOT EXISTS t1 (id TEXT PRIMARY KEY);`},
			{Version: 2, Description: "t2", Up: `CREATE TABLE IF NOT EXISTS t2 (id TEXT PRIMARY KEY);`},
		})

		require.NoError(t, ms.Run(ctx))
		require.NoError(t, ms.Run(ctx))

		applied, err := ms.Applied(ctx)
		require.NoError(t, err)
		assert.Len(t, applied, 2)
	})

	t.Run("AppliesInVersionOrder", func(t *testing.T) {
		db := newTestDB(t)
		// registered out of order, with a gap
		ms := NewMigrationService(db, testLogger(), []Migration{
			{Version: 5, Description: "child", Up: `CREATE TABLE IF NOT EXISTS child (id TEXT PRIMARY KEY, parent_id TEXT NOT NULL REFERENCES parent(id));`},
			{Version: 2, Description: "parent", Up: `CREATE TABLE IF NOT EXISTS parent (id TEXT PRIMARY KEY);`},
		})

		require.NoError(t, ms.Run(ctx))

		applied, err := ms.Applied(ctx)
		require.NoError(t, err)
		require.Len(t, applied, 2)
		assert.Equal(t, 2, applied[0].Version)
		assert.Equal(t, 5, applied[1].Version)
	})

	t.Run("StopsOnFirstFailureWithoutRecording", func(t *testing.T) {
		db := newTestDB(t)
		ms := NewMigrationService(db, testLogger(), []Migration{
			{Version: 1, Description: "ok", Up: `CREATE TABLE IF NOT EXISTS ok (id TEXT PRIMARY KEY);`},
			{Version: 2, Description: "broken", Up: `CREATE TABLE syntax error;`},
			{Version: 3, Description: "never", Up: `CREATE TABLE IF NOT EXISTS never (id TEXT PRIMARY KEY);`},
		})

		err := ms.Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migration 2")

		// the failed and subsequent versions stay unrecorded
		current, err := ms.CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, current)

		applied2, err := ms.IsApplied(ctx, 2)
		require.NoError(t, err)
		assert.False(t, applied2)

		applied3, err := ms.IsApplied(ctx, 3)
		require.NoError(t, err)
		assert.False(t, applied3)
	})

	t.Run("ResumesAfterFailureIsFixed", func(t *testing.T) {
		db := newTestDB(t)
		broken := []Migration{
			{Version: 1, Description: "ok", Up: `CREATE TABLE IF NOT EXISTS ok (id TEXT PRIMARY KEY);`},
			{Version: 2, Description: "broken", Up: `CREATE TABLE syntax error;`},
		}
		require.Error(t, NewMigrationService(db, testLogger(), broken).Run(ctx))

		fixed := []Migration{
			broken[0],
			{Version: 2, Description: "fixed", Up: `CREATE TABLE IF NOT EXISTS fixed (id TEXT PRIMARY KEY);`},
		}
		require.NoError(t, NewMigrationService(db, testLogger(), fixed).Run(ctx))

		current, err := NewMigrationService(db, testLogger(), fixed).CurrentVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, current)
	})

	t.Run("RejectsDuplicateVersions", func(t *testing.T) {
		db := newTestDB(t)
		ms := NewMigrationService(db, testLogger(), []Migration{
			{Version: 1, Description: "a", Up: `SELECT 1;`},
			{Version: 1, Description: "b", Up: `SELECT 1;`},
		})
		assert.Error(t, ms.Run(ctx))
	})

	t.Run("RejectsNonPositiveVersions", func(t *testing.T) {
		db := newTestDB(t)
		ms := NewMigrationService(db, testLogger(), []Migration{
			{Version: 0, Description: "zero", Up: `SELECT 1;`},
		})
		assert.Error(t, ms.Run(ctx))
	})
}

func TestMigrationService_CurrentVersionWithoutTrackingTable(t *testing.T) {
	db := newTestDB(t)
	ms := NewMigrationService(db, testLogger(), nil)

	current, err := ms.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	applied, err := ms.Applied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}
