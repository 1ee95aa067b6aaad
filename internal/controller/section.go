package controller

import "fmt"

// FetchedRecords returns the current projection's records in order, or
// ErrNotFetched before the first PerformFetch. Consumer context.
func (c *Controller[R]) FetchedRecords() ([]R, error) {
	if !c.fetched {
		return nil, ErrNotFetched
	}
	records := make([]R, len(c.mainSnapshot))
	for i, it := range c.mainSnapshot {
		rec, err := it.Record()
		if err != nil {
			return nil, fmt.Errorf("decode record at %d: %w", i, err)
		}
		records[i] = rec
	}
	return records, nil
}

// Count returns the number of records in the projection. Consumer context.
func (c *Controller[R]) Count() int {
	return len(c.mainSnapshot)
}

// RecordAt returns the record at index i. An out-of-range index or a read
// before the first fetch is a programmer error and panics. Consumer
// context.
func (c *Controller[R]) RecordAt(i int) R {
	if !c.fetched {
		panic("controller: RecordAt before PerformFetch")
	}
	if i < 0 || i >= len(c.mainSnapshot) {
		panic(fmt.Sprintf("controller: RecordAt(%d) out of range [0, %d)", i, len(c.mainSnapshot)))
	}
	rec, err := c.mainSnapshot[i].Record()
	if err != nil {
		panic(fmt.Sprintf("controller: RecordAt(%d): %v", i, err))
	}
	return rec
}

// IndexOf returns the position of the first record the identity predicate
// considers the same entity as rec, or false. Consumer context.
func (c *Controller[R]) IndexOf(rec R) (int, bool) {
	if !c.fetched || c.identity == nil {
		return 0, false
	}
	for i, it := range c.mainSnapshot {
		candidate, err := it.Record()
		if err != nil {
			continue
		}
		if c.identity(candidate, rec) {
			return i, true
		}
	}
	return 0, false
}

// Section is a read-only view over the projection's single section.
type Section[R any] struct {
	c *Controller[R]
}

// Sections returns the projection's sections. There is always exactly one.
// Consumer context.
func (c *Controller[R]) Sections() []Section[R] {
	return []Section[R]{{c: c}}
}

// NumberOfRecords returns the section's record count.
func (s Section[R]) NumberOfRecords() int {
	return s.c.Count()
}

// Records returns the section's records in order.
func (s Section[R]) Records() ([]R, error) {
	return s.c.FetchedRecords()
}

// RecordAt returns the record at index i of the section.
func (s Section[R]) RecordAt(i int) R {
	return s.c.RecordAt(i)
}
