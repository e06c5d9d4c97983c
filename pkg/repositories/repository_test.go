package repositories_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/repositories"
)

type task struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Priority    int       `db:"priority" json:"priority"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const taskSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    priority INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);`

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	t.Helper()

	db, err := database.Connect(context.Background(), getTestLogger(), database.Config{
		Path:         filepath.Join(t.TempDir(), "test.sqlite"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTaskRepo(t *testing.T) *repositories.Repository[task] {
	t.Helper()

	repo := repositories.NewRepository[task](getTestDB(t), getTestLogger(), "tasks")
	require.NoError(t, repo.ExecuteSchema(context.Background(), taskSchema))
	return repo
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	t.Run("GeneratesIDAndTimestamps", func(t *testing.T) {
		created, err := repo.Create(ctx, database.Fields{
			"name":      "deploy",
			"priority":  3,
			"is_active": true,
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "deploy", created.Name)
		assert.Equal(t, 3, created.Priority)
		assert.True(t, created.IsActive)
		assert.False(t, created.CreatedAt.IsZero())
		assert.False(t, created.UpdatedAt.IsZero())
	})

	t.Run("AbsentOptionalFieldStaysNull", func(t *testing.T) {
		created, err := repo.Create(ctx, database.Fields{
			"name":      "no description",
			"is_active": true,
		})
		require.NoError(t, err)
		assert.Nil(t, created.Description)
	})

	t.Run("ExplicitNilFieldStoresNull", func(t *testing.T) {
		created, err := repo.Create(ctx, database.Fields{
			"name":        "explicit nil",
			"description": nil,
			"is_active":   true,
		})
		require.NoError(t, err)
		assert.Nil(t, created.Description)
	})

	t.Run("ConstraintViolationPropagates", func(t *testing.T) {
		_, err := repo.Create(ctx, database.Fields{
			"name":      nil, // NOT NULL column
			"is_active": true,
		})
		require.Error(t, err)
		assert.True(t, database.IsConstraintViolation(err))
	})
}

func TestRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	created, err := repo.Create(ctx, database.Fields{"name": "find me", "is_active": true})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := repo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FindOneAndFindBy(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	for i, name := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, database.Fields{
			"name":      name,
			"priority":  i,
			"is_active": i != 1,
		})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // distinct created_at for ordering
	}

	t.Run("FindOneMatches", func(t *testing.T) {
		found, err := repo.FindOne(ctx, database.Fields{"name": "second"})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 1, found.Priority)
	})

	t.Run("FindOneNoMatchIsNil", func(t *testing.T) {
		found, err := repo.FindOne(ctx, database.Fields{"name": "nope"})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("FindByFiltersAndOrdersNewestFirst", func(t *testing.T) {
		active, err := repo.FindBy(ctx, database.Fields{"is_active": true}, 0, 0)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "third", active[0].Name)
		assert.Equal(t, "first", active[1].Name)
	})

	t.Run("FindAllWithLimitOffset", func(t *testing.T) {
		page, err := repo.FindAll(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "second", page[0].Name)
		assert.Equal(t, "first", page[1].Name)
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	created, err := repo.Create(ctx, database.Fields{"name": "original", "is_active": true})
	require.NoError(t, err)

	t.Run("MergesFieldsAndBumpsUpdatedAt", func(t *testing.T) {
		time.Sleep(5 * time.Millisecond)
		updated, err := repo.Update(ctx, created.ID, database.Fields{"name": "renamed"})
		require.NoError(t, err)

		assert.Equal(t, "renamed", updated.Name)
		assert.True(t, updated.IsActive, "untouched fields survive")
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	})

	t.Run("NilValueClearsColumn", func(t *testing.T) {
		withDesc, err := repo.Create(ctx, database.Fields{
			"name":        "with desc",
			"description": "something",
			"is_active":   true,
		})
		require.NoError(t, err)
		require.NotNil(t, withDesc.Description)

		cleared, err := repo.Update(ctx, withDesc.ID, database.Fields{"description": nil})
		require.NoError(t, err)
		assert.Nil(t, cleared.Description)
	})

	t.Run("EmptyChangeSetFails", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, database.Fields{})
		assert.Error(t, err)
	})
}

func TestRepository_UpdateMany(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	for _, name := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, database.Fields{"name": name, "is_active": true})
		require.NoError(t, err)
	}

	t.Run("AppliesToMatchingRows", func(t *testing.T) {
		affected, err := repo.UpdateMany(ctx, database.Fields{"is_active": true}, database.Fields{"priority": 9})
		require.NoError(t, err)
		assert.EqualValues(t, 3, affected)
	})

	t.Run("EmptyChangeSetFails", func(t *testing.T) {
		_, err := repo.UpdateMany(ctx, database.Fields{"is_active": true}, database.Fields{})
		assert.Error(t, err)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	created, err := repo.Create(ctx, database.Fields{"name": "doomed", "is_active": true})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete finds nothing")
}

func TestRepository_DeleteMany(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	for _, name := range []string{"x", "y"} {
		_, err := repo.Create(ctx, database.Fields{"name": name, "is_active": false})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, database.Fields{"name": "keep", "is_active": true})
	require.NoError(t, err)

	t.Run("RefusesEmptyCriteria", func(t *testing.T) {
		_, err := repo.DeleteMany(ctx, database.Fields{})
		assert.Error(t, err)

		count, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, count, "nothing was deleted")
	})

	t.Run("DeletesMatchingRows", func(t *testing.T) {
		affected, err := repo.DeleteMany(ctx, database.Fields{"is_active": false})
		require.NoError(t, err)
		assert.EqualValues(t, 2, affected)

		count, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestRepository_CountAndExists(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	created, err := repo.Create(ctx, database.Fields{"name": "counted", "is_active": true})
	require.NoError(t, err)

	count, err := repo.Count(ctx, database.Fields{"is_active": true})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exists, err := repo.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_CreateMany(t *testing.T) {
	ctx := context.Background()

	t.Run("AllOrNothing", func(t *testing.T) {
		repo := newTaskRepo(t)

		_, err := repo.CreateMany(ctx, []database.Fields{
			{"name": "good", "is_active": true},
			{"name": nil, "is_active": true}, // violates NOT NULL
		})
		require.Error(t, err)

		count, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, count, "failed batch leaves nothing behind")
	})

	t.Run("CreatesAllItems", func(t *testing.T) {
		repo := newTaskRepo(t)

		results, err := repo.CreateMany(ctx, []database.Fields{
			{"name": "one", "is_active": true},
			{"name": "two", "is_active": true},
		})
		require.NoError(t, err)
		assert.Len(t, results, 2)

		count, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestRepository_WithTx(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	t.Run("CommitsOnNilReturn", func(t *testing.T) {
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.Create(txCtx, database.Fields{"name": "committed", "is_active": true})
			return err
		})
		require.NoError(t, err)

		found, err := repo.FindOne(ctx, database.Fields{"name": "committed"})
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if _, err := repo.Create(txCtx, database.Fields{"name": "rolled back", "is_active": true}); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		found, err := repo.FindOne(ctx, database.Fields{"name": "rolled back"})
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRepository_RawQuery(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	_, err := repo.Create(ctx, database.Fields{"name": "raw", "priority": 7, "is_active": true})
	require.NoError(t, err)

	rows, err := repo.RawQuery(ctx, "SELECT name, priority FROM tasks WHERE priority = ?", 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "raw", rows[0]["name"])
	assert.EqualValues(t, 7, rows[0]["priority"])

	row, err := repo.RawGet(ctx, "SELECT name FROM tasks WHERE priority = ?", 99)
	require.NoError(t, err)
	assert.Nil(t, row)
}
