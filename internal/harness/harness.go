package harness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/livequery/internal/controller"
	"github.com/roach88/livequery/internal/record"
	"github.com/roach88/livequery/internal/source"
	"github.com/roach88/livequery/internal/store"
	"github.com/roach88/livequery/internal/testutil"
)

// RowRecord is the record type scenarios decode into: the row's columns as
// a plain map.
type RowRecord map[string]any

func decodeRowRecord(row record.Row) (RowRecord, error) {
	out := make(RowRecord, row.Len())
	for i, col := range row.Columns() {
		out[col] = row.ValueAt(i)
	}
	return out, nil
}

// identityByColumn treats two records as the same entity when the named
// column matches. Scenarios identify records by "id".
func identityByColumn(column string) record.Identity[RowRecord] {
	return func(a, b RowRecord) bool {
		av, okA := a[column]
		bv, okB := b[column]
		return okA && okB && record.ValueEqual(av, bv)
	}
}

// TraceEvent is one recorded delegate callback, tagged with the
// transaction that produced it.
type TraceEvent struct {
	Transaction string
	Callback    string
	Event       controller.Event
	Record      RowRecord
}

// Result is the outcome of running a scenario.
type Result struct {
	Trace        []TraceEvent
	FinalRecords []RowRecord
}

// errRolledBack aborts a scenario transaction; it never escapes Run.
var errRolledBack = errors.New("harness: rolled back")

// Run executes a scenario against a scratch database at dbPath.
func Run(scenario *Scenario, dbPath string) (*Result, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	defer st.Close()

	ctx := context.Background()
	err = st.Write(ctx, func(tx *sql.Tx) error {
		for _, stmt := range scenario.Setup {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("setup %q: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	consumer := controller.NewSerialQueue()
	defer consumer.Close()

	src := source.NewSQL(scenario.Watch.SQL, scenario.Watch.Args...)
	ctrl := controller.New(st, src, decodeRowRecord, consumer,
		controller.WithIdentity(identityByColumn("id")))
	defer ctrl.Close()

	delegate := &testutil.RecordingDelegate[RowRecord]{}
	runOnConsumer(consumer, func() {
		ctrl.SetDelegate(delegate)
	})

	var fetchErr error
	runOnConsumer(consumer, func() {
		fetchErr = ctrl.PerformFetch(ctx)
	})
	if fetchErr != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, fetchErr)
	}

	result := &Result{}
	for _, step := range scenario.Transactions {
		err := st.Write(ctx, func(tx *sql.Tx) error {
			for _, stmt := range step.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("statement %q: %w", stmt, err)
				}
			}
			if step.Rollback {
				return errRolledBack
			}
			return nil
		})
		if err != nil && !errors.Is(err, errRolledBack) {
			return nil, fmt.Errorf("scenario %s, transaction %s: %w", scenario.Name, step.Name, err)
		}

		if err := ctrl.Flush(ctx); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		for _, entry := range delegate.Entries() {
			result.Trace = append(result.Trace, TraceEvent{
				Transaction: step.Name,
				Callback:    entry.Callback,
				Event:       entry.Event,
				Record:      entry.Record,
			})
		}
		delegate.Reset()
	}

	var finalErr error
	runOnConsumer(consumer, func() {
		result.FinalRecords, finalErr = ctrl.FetchedRecords()
	})
	if finalErr != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, finalErr)
	}
	return result, nil
}

// runOnConsumer runs fn on the consumer queue and waits for it: the
// controller's consumer-context contract, honored from the test goroutine.
func runOnConsumer(consumer *controller.SerialQueue, fn func()) {
	done := make(chan struct{})
	if !consumer.Submit(func() {
		fn()
		close(done)
	}) {
		close(done)
	}
	<-done
}
