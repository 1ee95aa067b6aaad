package controller

import (
	"fmt"

	"github.com/roach88/livequery/internal/diff"
)

// EventKind tags the public change variants.
type EventKind int

const (
	// EventInsertion reports a record inserted at NewIndexPath.
	EventInsertion EventKind = iota + 1
	// EventDeletion reports the record removed from IndexPath.
	EventDeletion
	// EventMove reports a record moved from IndexPath to NewIndexPath.
	EventMove
	// EventUpdate reports the record at NewIndexPath changed in place.
	EventUpdate
)

// String returns the kind's name.
func (k EventKind) String() string {
	switch k {
	case EventInsertion:
		return "insertion"
	case EventDeletion:
		return "deletion"
	case EventMove:
		return "move"
	case EventUpdate:
		return "update"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// IndexPath locates a record in the projection. The projection is a single
// section, so Section is always 0.
type IndexPath struct {
	Section int
	Row     int
}

// Event is the public form of one edit-script change.
//
//   - EventInsertion: NewIndexPath is set.
//   - EventDeletion:  IndexPath is set.
//   - EventMove:      IndexPath (from) and NewIndexPath (to) are set, and
//     ChangedColumns maps each changed column to its old value.
//   - EventUpdate:    NewIndexPath is set, ChangedColumns as for moves.
type Event struct {
	Kind           EventKind
	IndexPath      IndexPath
	NewIndexPath   IndexPath
	ChangedColumns map[string]any
}

// eventFromChange projects an internal change into the public event form,
// dropping the item handle.
func eventFromChange[R any](c diff.Change[R]) Event {
	switch c.Kind {
	case diff.Insertion:
		return Event{Kind: EventInsertion, NewIndexPath: IndexPath{Row: c.To}}
	case diff.Deletion:
		return Event{Kind: EventDeletion, IndexPath: IndexPath{Row: c.From}}
	case diff.Move:
		return Event{
			Kind:           EventMove,
			IndexPath:      IndexPath{Row: c.From},
			NewIndexPath:   IndexPath{Row: c.To},
			ChangedColumns: c.ChangedColumns,
		}
	case diff.Update:
		return Event{
			Kind:           EventUpdate,
			NewIndexPath:   IndexPath{Row: c.To},
			ChangedColumns: c.ChangedColumns,
		}
	default:
		panic(fmt.Sprintf("controller: unknown change kind %d", int(c.Kind)))
	}
}

// RecordsDelegate receives change notifications on the consumer context.
//
// For each delivered edit script the controller calls WillChangeRecords,
// then DidChangeRecord once per change in script order, then
// DidChangeRecords. The projection read through the controller reflects the
// new snapshot from WillChangeRecords' return onward.
type RecordsDelegate[R any] interface {
	WillChangeRecords()
	DidChangeRecord(record R, event Event)
	DidChangeRecords()
}
