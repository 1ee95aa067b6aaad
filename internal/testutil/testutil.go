// Package testutil provides deterministic helpers shared by the package
// tests: row and item builders over a tiny player schema, an edit-script
// applier, and a recording delegate.
package testutil

import (
	"fmt"

	"github.com/roach88/livequery/internal/record"
)

// Player is the record type used across the tests: an id, a name and a
// score, identified by id.
type Player struct {
	ID    int64
	Name  string
	Score int64
}

// DatabaseTableName implements record.TableRecord.
func (Player) DatabaseTableName() string { return "players" }

// DatabaseValues implements record.TableRecord.
func (p Player) DatabaseValues() map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "score": p.Score}
}

// DecodePlayer materializes a Player from a row.
func DecodePlayer(row record.Row) (Player, error) {
	id, ok := row.Value("id")
	if !ok {
		return Player{}, fmt.Errorf("row has no id column")
	}
	name, _ := row.Value("name")
	score, _ := row.Value("score")

	p := Player{}
	switch v := id.(type) {
	case int64:
		p.ID = v
	default:
		return Player{}, fmt.Errorf("id column has type %T", id)
	}
	if s, ok := name.(string); ok {
		p.Name = s
	}
	if s, ok := score.(int64); ok {
		p.Score = s
	}
	return p, nil
}

// SamePlayer is identity by id.
func SamePlayer(a, b Player) bool { return a.ID == b.ID }

// PlayerRow builds a row with id and name columns.
func PlayerRow(id int64, name string) record.Row {
	return record.NewRow([]string{"id", "name"}, []any{id, name})
}

// PlayerItem builds an item over PlayerRow.
func PlayerItem(id int64, name string) *record.Item[Player] {
	return record.NewItem(PlayerRow(id, name), DecodePlayer, nil)
}

// Items builds an item sequence from (id, name) pairs.
func Items(pairs ...[2]any) []*record.Item[Player] {
	items := make([]*record.Item[Player], len(pairs))
	for i, p := range pairs {
		items[i] = PlayerItem(int64(p[0].(int)), p[1].(string))
	}
	return items
}
