package record

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyedRecord struct {
	ID   int64
	Name string
}

func (keyedRecord) DatabaseTableName() string { return "players" }

func (r keyedRecord) DatabaseValues() map[string]any {
	return map[string]any{"id": r.ID, "name": r.Name}
}

type unkeyedRecord struct {
	Rowid int64
	Body  string
}

func (unkeyedRecord) DatabaseTableName() string { return "notes" }

func (r unkeyedRecord) DatabaseValues() map[string]any {
	return map[string]any{"rowid": r.Rowid, "body": r.Body}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", t.TempDir()+"/identity.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE players (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (body TEXT)`)
	require.NoError(t, err)
	return db
}

func TestAlwaysDistinct(t *testing.T) {
	same := AlwaysDistinct[keyedRecord]()
	r := keyedRecord{ID: 1}
	assert.False(t, same(r, r))
}

func TestByPrimaryKey(t *testing.T) {
	db := openTestDB(t)

	same, err := ByPrimaryKey[keyedRecord](context.Background(), db)
	require.NoError(t, err)

	assert.True(t, same(keyedRecord{ID: 1, Name: "a"}, keyedRecord{ID: 1, Name: "b"}),
		"same key, different values")
	assert.False(t, same(keyedRecord{ID: 1, Name: "a"}, keyedRecord{ID: 2, Name: "a"}))
}

func TestByPrimaryKey_RowidFallback(t *testing.T) {
	db := openTestDB(t)

	// notes has no declared primary key: identity falls back to rowid.
	same, err := ByPrimaryKey[unkeyedRecord](context.Background(), db)
	require.NoError(t, err)

	assert.True(t, same(unkeyedRecord{Rowid: 3, Body: "a"}, unkeyedRecord{Rowid: 3, Body: "b"}))
	assert.False(t, same(unkeyedRecord{Rowid: 3, Body: "a"}, unkeyedRecord{Rowid: 4, Body: "a"}))
}

func TestByPrimaryKey_RowidFallbackWithoutRowidValue(t *testing.T) {
	db := openTestDB(t)

	same, err := ByPrimaryKey[bareRecord](context.Background(), db)
	require.NoError(t, err)

	// Records that do not expose a rowid value never compare as the same
	// entity.
	assert.False(t, same(bareRecord{}, bareRecord{}))
}

type bareRecord struct{}

func (bareRecord) DatabaseTableName() string { return "notes" }

func (bareRecord) DatabaseValues() map[string]any { return nil }
