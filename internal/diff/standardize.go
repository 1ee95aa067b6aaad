package diff

import "github.com/roach88/livequery/internal/record"

// standardize merges inverse deletion/insertion pairs over the same logical
// record into Move or Update changes.
//
// The raw script is walked in order against an accumulator. When the current
// change and an accumulated change form an inverse pair whose decoded
// records satisfy same, the pair collapses: equal indexes yield an Update,
// distinct indexes a Move. The merged change carries the new item (the
// insertion side) and a map from each changed column to its old value.
//
// Moves take the accumulator slot of the matched change; Updates are
// buffered and appended after every structural change, which is the order
// downstream list consumers want.
//
// Rows with differing column sets never merge: column-wise diffing is
// undefined across schemas, so the deletion and insertion stay separate.
func standardize[R any](raw []Change[R], same record.Identity[R]) []Change[R] {
	var merged []Change[R]
	var updates []Change[R]

	for _, c := range raw {
		i := findInverse(merged, c, same)
		if i < 0 {
			merged = append(merged, c)
			continue
		}

		matched := merged[i]
		var del, ins Change[R]
		if c.Kind == Deletion {
			del, ins = c, matched
		} else {
			del, ins = matched, c
		}

		oldRow := del.Item.Row()
		newRow := ins.Item.Row()
		changed := newRow.ChangedValues(oldRow)

		if del.From == ins.To {
			merged = append(merged[:i], merged[i+1:]...)
			updates = append(updates, Change[R]{
				Kind:           Update,
				Item:           ins.Item,
				From:           -1,
				To:             ins.To,
				ChangedColumns: changed,
			})
		} else {
			merged[i] = Change[R]{
				Kind:           Move,
				Item:           ins.Item,
				From:           del.From,
				To:             ins.To,
				ChangedColumns: changed,
			}
		}
	}

	return append(merged, updates...)
}

// findInverse returns the index in acc of an unmerged change that is the
// inverse of c (deletion vs insertion) over the same logical record with a
// compatible row schema, or -1.
func findInverse[R any](acc []Change[R], c Change[R], same record.Identity[R]) int {
	var want Kind
	switch c.Kind {
	case Deletion:
		want = Insertion
	case Insertion:
		want = Deletion
	default:
		return -1
	}

	cRec, err := c.Item.Record()
	if err != nil {
		return -1
	}

	for i, m := range acc {
		if m.Kind != want {
			continue
		}
		if !m.Item.Row().HasSameColumns(c.Item.Row()) {
			continue
		}
		mRec, err := m.Item.Record()
		if err != nil {
			continue
		}
		if same(cRec, mRec) {
			return i
		}
	}
	return -1
}
