package testutil

import (
	"fmt"

	"github.com/roach88/livequery/internal/diff"
	"github.com/roach88/livequery/internal/record"
)

// ApplyScript interprets an edit script as ordered-list edits over old and
// returns the resulting sequence. Deletions and the deletion half of moves
// are applied against positions in the pre-change list, insertions and the
// insertion half against the post-change list, updates as in-place
// replacements. Property tests use it to check script soundness: applying
// diff.Compute(s, t, identity) to s must yield t.
func ApplyScript[R any](old []*record.Item[R], script []diff.Change[R]) ([]*record.Item[R], error) {
	// Structural changes first: deletions and moves remove from the old
	// positions (descending, so indexes stay valid), then insertions and
	// moves add at the new positions (ascending).
	type placement struct {
		item *record.Item[R]
		at   int
	}
	var removals []int
	var additions []placement
	var updates []placement

	for _, c := range script {
		switch c.Kind {
		case diff.Deletion:
			removals = append(removals, c.From)
		case diff.Insertion:
			additions = append(additions, placement{item: c.Item, at: c.To})
		case diff.Move:
			removals = append(removals, c.From)
			additions = append(additions, placement{item: c.Item, at: c.To})
		case diff.Update:
			updates = append(updates, placement{item: c.Item, at: c.To})
		default:
			return nil, fmt.Errorf("apply: unknown change kind %d", int(c.Kind))
		}
	}

	out := append([]*record.Item[R](nil), old...)

	// Descending removal keeps earlier indexes stable.
	for i := 0; i < len(removals); i++ {
		for j := i + 1; j < len(removals); j++ {
			if removals[j] > removals[i] {
				removals[i], removals[j] = removals[j], removals[i]
			}
		}
	}
	for _, at := range removals {
		if at < 0 || at >= len(out) {
			return nil, fmt.Errorf("apply: removal index %d out of range [0, %d)", at, len(out))
		}
		out = append(out[:at], out[at+1:]...)
	}

	// Ascending insertion fills the post-change positions.
	for i := 0; i < len(additions); i++ {
		for j := i + 1; j < len(additions); j++ {
			if additions[j].at < additions[i].at {
				additions[i], additions[j] = additions[j], additions[i]
			}
		}
	}
	for _, p := range additions {
		if p.at < 0 || p.at > len(out) {
			return nil, fmt.Errorf("apply: insertion index %d out of range [0, %d]", p.at, len(out))
		}
		out = append(out[:p.at], append([]*record.Item[R]{p.item}, out[p.at:]...)...)
	}

	for _, p := range updates {
		if p.at < 0 || p.at >= len(out) {
			return nil, fmt.Errorf("apply: update index %d out of range [0, %d)", p.at, len(out))
		}
		out[p.at] = p.item
	}

	return out, nil
}
