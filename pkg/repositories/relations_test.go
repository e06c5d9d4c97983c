package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/repositories"
)

type album struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const albumSchema = `
CREATE TABLE IF NOT EXISTS albums (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS songs (
    id TEXT PRIMARY KEY,
    album_id TEXT NOT NULL REFERENCES albums(id),
    title TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);`

var songsRelation = repositories.Relation{
	Name:     "songs",
	Table:    "songs",
	Alias:    "s",
	On:       "albums.id = s.album_id",
	Columns:  []string{"id", "title"},
	Key:      "id",
	Multiple: true,
}

func newAlbumRepo(t *testing.T) (*repositories.Repository[album], database.DB) {
	t.Helper()

	db := getTestDB(t)
	albums := repositories.NewRepository[album](db, getTestLogger(), "albums")
	require.NoError(t, albums.ExecuteSchema(context.Background(), albumSchema))
	return albums, db
}

func addSong(t *testing.T, db database.DB, id, albumID, title string) {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO songs (id, album_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, albumID, title, now, now)
	require.NoError(t, err)
}

func TestFindWithRelations(t *testing.T) {
	ctx := context.Background()
	albums, db := newAlbumRepo(t)

	first, err := albums.Create(ctx, database.Fields{"title": "first"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := albums.Create(ctx, database.Fields{"title": "second"})
	require.NoError(t, err)

	addSong(t, db, "s1", first.ID, "track one")
	addSong(t, db, "s2", first.ID, "track two")

	rows, err := albums.FindWithRelations(ctx, repositories.RelationQuery{
		Relations: []repositories.Relation{songsRelation},
		OrderBy:   "albums.created_at ASC, s.created_at ASC",
	})
	require.NoError(t, err)
	// two joined rows for the first album, one all-null row for the second
	require.Len(t, rows, 3)
	assert.Equal(t, "track one", rows[0]["s_title"])
	assert.Equal(t, "track two", rows[1]["s_title"])
	assert.Nil(t, rows[2]["s_title"])

	t.Run("FoldsIntoNestedEntities", func(t *testing.T) {
		results := repositories.TransformRelationalData(rows, "id", []repositories.Relation{songsRelation})
		require.Len(t, results, 2)

		withSongs := results[0]
		assert.Equal(t, first.ID, withSongs["id"])
		children, ok := withSongs["songs"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, children, 2)
		assert.Equal(t, "track one", children[0]["title"])

		empty := results[1]
		assert.Equal(t, second.ID, empty["id"])
		emptyChildren, ok := empty["songs"].([]map[string]any)
		require.True(t, ok)
		assert.Empty(t, emptyChildren, "parent without children gets an empty list, not a phantom child")
	})

	t.Run("WhereScopesToOneParent", func(t *testing.T) {
		scoped, err := albums.FindWithRelations(ctx, repositories.RelationQuery{
			Relations: []repositories.Relation{songsRelation},
			Where:     database.Fields{"albums.id": first.ID},
		})
		require.NoError(t, err)
		assert.Len(t, scoped, 2)
	})
}

func TestTransformRelationalData(t *testing.T) {
	relations := []repositories.Relation{songsRelation}

	t.Run("DeDuplicatesChildrenByKey", func(t *testing.T) {
		rows := []map[string]any{
			{"id": "a1", "title": "album", "s_id": "s1", "s_title": "track"},
			{"id": "a1", "title": "album", "s_id": "s1", "s_title": "track"},
			{"id": "a1", "title": "album", "s_id": "s2", "s_title": "other"},
		}

		results := repositories.TransformRelationalData(rows, "id", relations)
		require.Len(t, results, 1)
		children := results[0]["songs"].([]map[string]any)
		assert.Len(t, children, 2)
	})

	t.Run("PreservesFirstSeenParentOrder", func(t *testing.T) {
		rows := []map[string]any{
			{"id": "b", "title": "second", "s_id": nil, "s_title": nil},
			{"id": "a", "title": "first", "s_id": nil, "s_title": nil},
			{"id": "b", "title": "second", "s_id": "s1", "s_title": "late child"},
		}

		results := repositories.TransformRelationalData(rows, "id", relations)
		require.Len(t, results, 2)
		assert.Equal(t, "b", results[0]["id"])
		assert.Equal(t, "a", results[1]["id"])

		children := results[0]["songs"].([]map[string]any)
		require.Len(t, children, 1)
		assert.Equal(t, "late child", children[0]["title"])
	})

	t.Run("SkipsRowsWithoutParentKey", func(t *testing.T) {
		rows := []map[string]any{
			{"id": nil, "title": "orphan"},
			{"title": "no id at all"},
			{"id": "a", "title": "real"},
		}

		results := repositories.TransformRelationalData(rows, "id", relations)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0]["id"])
	})

	t.Run("SingularRelationTakesFirstChild", func(t *testing.T) {
		owner := repositories.Relation{
			Name:    "owner",
			Table:   "owners",
			Alias:   "o",
			On:      "albums.owner_id = o.id",
			Columns: []string{"id", "name"},
			Key:     "id",
		}
		rows := []map[string]any{
			{"id": "a1", "o_id": "u1", "o_name": "alice"},
			{"id": "a1", "o_id": "u2", "o_name": "bob"},
		}

		results := repositories.TransformRelationalData(rows, "id", []repositories.Relation{owner})
		require.Len(t, results, 1)
		child, ok := results[0]["owner"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", child["name"])
	})

	t.Run("EmptyInput", func(t *testing.T) {
		results := repositories.TransformRelationalData(nil, "id", relations)
		assert.Empty(t, results)
	})
}
