package record

import "sync"

// Decoder materializes a record of type R from a fetched row.
type Decoder[R any] func(Row) (R, error)

// AfterFetchHook runs once on a freshly decoded record, before it is first
// observed. When identity is computed on records rather than rows, the hook
// must leave identity stable: two decodings of equal rows must still compare
// as the same entity after the hook has run.
type AfterFetchHook[R any] func(R)

// Item pairs a fetched row with its lazily decoded record.
//
// The row is copied at construction and immutable afterwards. The record is
// materialized at most once, on first access; concurrent callers observe the
// same decoded value and the after-fetch hook runs at most once.
//
// Two Items are equal iff their rows are equal.
type Item[R any] struct {
	row    Row
	decode Decoder[R]
	hook   AfterFetchHook[R]

	once   sync.Once
	record R
	err    error
}

// NewItem creates an Item over a copy of row.
func NewItem[R any](row Row, decode Decoder[R], hook AfterFetchHook[R]) *Item[R] {
	return &Item[R]{
		row:    NewRow(row.columns, row.values),
		decode: decode,
		hook:   hook,
	}
}

// Row returns the item's row.
func (it *Item[R]) Row() Row {
	return it.row
}

// Record returns the decoded record, materializing it on first call.
// The decode error, if any, is sticky: every call returns the same result.
func (it *Item[R]) Record() (R, error) {
	it.once.Do(func() {
		it.record, it.err = it.decode(it.row)
		if it.err == nil && it.hook != nil {
			it.hook(it.record)
		}
	})
	return it.record, it.err
}

// EqualRow reports whether both items hold equal rows.
func (it *Item[R]) EqualRow(other *Item[R]) bool {
	return it.row.Equal(other.row)
}
