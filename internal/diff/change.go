package diff

import (
	"fmt"

	"github.com/roach88/livequery/internal/record"
)

// Kind tags the four edit-script change variants.
type Kind int

const (
	// Insertion adds an item at index To of the new sequence.
	Insertion Kind = iota + 1
	// Deletion removes the item at index From of the old sequence.
	Deletion
	// Move relocates an item from index From to index To, with any column
	// changes recorded in ChangedColumns.
	Move
	// Update replaces the item at index To in place; ChangedColumns maps
	// each changed column to its old value.
	Update
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case Move:
		return "move"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change is one edit-script atom.
//
// Exactly one variant applies, per Kind:
//   - Insertion: Item is the new item, To its index. From is -1.
//   - Deletion:  Item is the old item, From its index. To is -1.
//   - Move:      Item is the new item, From the old index, To the new one.
//   - Update:    Item is the new item, To its index. From is -1.
//
// For Move and Update, ChangedColumns maps each column whose value changed
// to the old value; columns equal in both rows are absent.
type Change[R any] struct {
	Kind           Kind
	Item           *record.Item[R]
	From           int
	To             int
	ChangedColumns map[string]any
}

func insertion[R any](item *record.Item[R], at int) Change[R] {
	return Change[R]{Kind: Insertion, Item: item, From: -1, To: at}
}

func deletion[R any](item *record.Item[R], from int) Change[R] {
	return Change[R]{Kind: Deletion, Item: item, From: from, To: -1}
}

// String renders the change for logs and test failures.
func (c Change[R]) String() string {
	switch c.Kind {
	case Insertion:
		return fmt.Sprintf("insertion(at=%d, row=%s)", c.To, c.Item.Row())
	case Deletion:
		return fmt.Sprintf("deletion(from=%d, row=%s)", c.From, c.Item.Row())
	case Move:
		return fmt.Sprintf("move(from=%d, to=%d, changed=%v, row=%s)", c.From, c.To, c.ChangedColumns, c.Item.Row())
	case Update:
		return fmt.Sprintf("update(at=%d, changed=%v, row=%s)", c.To, c.ChangedColumns, c.Item.Row())
	default:
		return fmt.Sprintf("change(kind=%d)", int(c.Kind))
	}
}
