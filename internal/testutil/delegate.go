package testutil

import (
	"sync"

	"github.com/roach88/livequery/internal/controller"
)

// TraceEntry is one recorded delegate callback.
type TraceEntry[R any] struct {
	// Callback is "will_change", "did_change" or "did_change_all".
	Callback string

	// Record and Event are set for "did_change" entries.
	Record R
	Event  controller.Event
}

// RecordingDelegate captures the delegate callback stream for assertions.
//
// Callbacks arrive on the consumer context; reads may happen from the test
// goroutine after a Flush, hence the mutex.
type RecordingDelegate[R any] struct {
	mu      sync.Mutex
	entries []TraceEntry[R]
}

// WillChangeRecords implements controller.RecordsDelegate.
func (d *RecordingDelegate[R]) WillChangeRecords() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, TraceEntry[R]{Callback: "will_change"})
}

// DidChangeRecord implements controller.RecordsDelegate.
func (d *RecordingDelegate[R]) DidChangeRecord(record R, event controller.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, TraceEntry[R]{Callback: "did_change", Record: record, Event: event})
}

// DidChangeRecords implements controller.RecordsDelegate.
func (d *RecordingDelegate[R]) DidChangeRecords() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, TraceEntry[R]{Callback: "did_change_all"})
}

// Entries returns a copy of the recorded trace.
func (d *RecordingDelegate[R]) Entries() []TraceEntry[R] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]TraceEntry[R](nil), d.entries...)
}

// Events returns just the "did_change" events, in order.
func (d *RecordingDelegate[R]) Events() []controller.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var events []controller.Event
	for _, e := range d.entries {
		if e.Callback == "did_change" {
			events = append(events, e.Event)
		}
	}
	return events
}

// Reset clears the recorded trace.
func (d *RecordingDelegate[R]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = nil
}
