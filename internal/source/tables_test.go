package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceTables_SingleTable(t *testing.T) {
	tables, err := SourceTables(`SELECT id, name FROM players ORDER BY id`)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"players": {}}, tables)
}

func TestSourceTables_Join(t *testing.T) {
	tables, err := SourceTables(`
		SELECT p.name, t.name
		FROM players p
		LEFT JOIN teams t ON t.id = p.team_id
		ORDER BY p.id`)
	require.NoError(t, err)

	assert.Contains(t, tables, "players")
	assert.Contains(t, tables, "teams")
}

func TestSourceTables_Subquery(t *testing.T) {
	tables, err := SourceTables(`
		SELECT name FROM players
		WHERE team_id IN (SELECT id FROM teams WHERE wins > 3)`)
	require.NoError(t, err)

	assert.Contains(t, tables, "players")
	assert.Contains(t, tables, "teams")
}

func TestSourceTables_CaseInsensitive(t *testing.T) {
	tables, err := SourceTables(`SELECT * FROM Players`)
	require.NoError(t, err)
	assert.Contains(t, tables, "players")
}

func TestSourceTables_PlaceholderParameters(t *testing.T) {
	// SQLite '?' marks are not PostgreSQL syntax; they must be rewritten
	// before the parse.
	tables, err := SourceTables(`SELECT id, name FROM players WHERE score > ? AND name = ? ORDER BY id`)
	require.NoError(t, err)
	assert.Contains(t, tables, "players")
}

func TestTranslatePlaceholders(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`SELECT 1`, `SELECT 1`},
		{`WHERE a = ? AND b = ?`, `WHERE a = $1 AND b = $2`},
		{`WHERE a = '?' AND b = ?`, `WHERE a = '?' AND b = $1`},
		{`WHERE a = "?" AND b = ?`, `WHERE a = "?" AND b = $1`},
		{`WHERE a = 'it''s ?' AND b = ?`, `WHERE a = 'it''s ?' AND b = $1`},
		{"WHERE a = ? -- or ?\n AND b = ?", "WHERE a = $1 -- or ?\n AND b = $2"},
		{`WHERE a = ? /* ? */ AND b = ?`, `WHERE a = $1 /* ? */ AND b = $2`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, translatePlaceholders(tc.in), "sql: %s", tc.in)
	}
}

func TestSourceTables_ParseError(t *testing.T) {
	_, err := SourceTables(`SELEKT broken`)
	assert.Error(t, err)
}

func TestSourceTables_NoTables(t *testing.T) {
	_, err := SourceTables(`SELECT 1`)
	assert.Error(t, err)
}
