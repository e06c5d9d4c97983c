package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    balance INTEGER NOT NULL
);`

func setupAccounts(t *testing.T) DB {
	t.Helper()

	db := newTestDB(t)
	_, err := db.ExecContext(context.Background(), accountSchema)
	require.NoError(t, err)
	return db
}

func countAccounts(t *testing.T, db DB) int {
	t.Helper()

	var count int
	require.NoError(t, db.GetContext(context.Background(), &count, "SELECT COUNT(*) FROM accounts"))
	return count
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("CommitsOnNilReturn", func(t *testing.T) {
		db := setupAccounts(t)

		err := WithTx(ctx, logger, db, func(txCtx context.Context) error {
			_, err := FromContext(txCtx, db).ExecContext(txCtx, "INSERT INTO accounts (id, balance) VALUES ('a', 100)")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countAccounts(t, db))
	})

	t.Run("RollsBackOnErrorUnchanged", func(t *testing.T) {
		db := setupAccounts(t)
		sentinel := errors.New("boom")

		err := WithTx(ctx, logger, db, func(txCtx context.Context) error {
			if _, err := FromContext(txCtx, db).ExecContext(txCtx, "INSERT INTO accounts (id, balance) VALUES ('a', 100)"); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)
		assert.Equal(t, 0, countAccounts(t, db))
	})

	t.Run("NestedCallJoinsOuterTransaction", func(t *testing.T) {
		db := setupAccounts(t)
		sentinel := errors.New("inner failure")

		err := WithTx(ctx, logger, db, func(outerCtx context.Context) error {
			if _, err := FromContext(outerCtx, db).ExecContext(outerCtx, "INSERT INTO accounts (id, balance) VALUES ('outer', 1)"); err != nil {
				return err
			}
			// joins the same transaction instead of opening a second one
			if err := WithTx(outerCtx, logger, db, func(innerCtx context.Context) error {
				_, err := FromContext(innerCtx, db).ExecContext(innerCtx, "INSERT INTO accounts (id, balance) VALUES ('inner', 2)")
				return err
			}); err != nil {
				return err
			}
			return sentinel
		})

		require.ErrorIs(t, err, sentinel)
		assert.Equal(t, 0, countAccounts(t, db), "outer rollback takes the joined inner writes with it")
	})
}

func TestFromContext(t *testing.T) {
	db := setupAccounts(t)

	t.Run("NoScopeReturnsDatabase", func(t *testing.T) {
		querier := FromContext(context.Background(), db)
		assert.Equal(t, db, querier)
	})

	t.Run("OpenScopeReturnsTransaction", func(t *testing.T) {
		err := WithTx(context.Background(), testLogger(), db, func(txCtx context.Context) error {
			querier := FromContext(txCtx, db)
			assert.NotEqual(t, db, querier)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestConstraintHelpers(t *testing.T) {
	ctx := context.Background()
	db := setupAccounts(t)

	_, err := db.ExecContext(ctx, "INSERT INTO accounts (id, balance) VALUES ('dup', 1)")
	require.NoError(t, err)

	t.Run("UniqueViolation", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO accounts (id, balance) VALUES ('dup', 2)")
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
		assert.True(t, IsConstraintViolation(err))
	})

	t.Run("NotNullViolationIsConstraintButNotUnique", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO accounts (id, balance) VALUES ('other', NULL)")
		require.Error(t, err)
		assert.False(t, IsUniqueViolation(err))
		assert.True(t, IsConstraintViolation(err))
	})

	t.Run("NilAndOtherErrors", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(nil))
		assert.False(t, IsConstraintViolation(errors.New("not sqlite")))
	})
}
