package controller

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/roach88/livequery/internal/diff"
	"github.com/roach88/livequery/internal/record"
	"github.com/roach88/livequery/internal/source"
	"github.com/roach88/livequery/internal/store"
)

// IdentityBuilder constructs the record identity at first fetch time.
// Primary-key identity needs the schema, hence the database handle.
type IdentityBuilder[R any] func(ctx context.Context, q record.Querier) (record.Identity[R], error)

// Controller tracks changes in the results of a query.
//
// A Controller is inert at construction. PerformFetch loads the initial
// projection and, on first call, attaches the controller to the store's
// transaction stream; from then on every committed transaction touching an
// observed table produces at most one edit script, delivered to the
// delegate on the consumer context in commit order.
//
// PerformFetch and the read API must run on the consumer context. Close
// may be called from anywhere.
type Controller[R any] struct {
	store    *store.Store
	src      *source.Source
	decode   record.Decoder[R]
	hook     record.AfterFetchHook[R]
	consumer Executor
	diffQ    *SerialQueue
	logger   *slog.Logger
	onError  func(error)
	buildID  IdentityBuilder[R]

	// closed is the liveness signal queued jobs check at dispatch.
	closed atomic.Bool

	// generation advances on each PerformFetch; pipeline jobs stamped with
	// an older generation drop instead of delivering stale scripts.
	generation atomic.Int64

	// Writer context.
	observedTables map[string]struct{}
	dirty          bool
	attached       bool

	// Diff context. identity is written on the writer context during the
	// first PerformFetch, strictly before the first diff job is submitted;
	// the queue handoff publishes it.
	identity     record.Identity[R]
	diffSnapshot []*record.Item[R]

	// Consumer context.
	mainSnapshot []*record.Item[R]
	fetched      bool
	delegate     RecordsDelegate[R]
}

// Option configures a Controller.
type Option[R any] func(*Controller[R])

// WithIdentity supplies an explicit record identity predicate.
func WithIdentity[R any](same record.Identity[R]) Option[R] {
	return func(c *Controller[R]) {
		c.buildID = func(context.Context, record.Querier) (record.Identity[R], error) {
			return same, nil
		}
	}
}

// WithPrimaryKeyIdentity compares records by their table's primary key.
// The key columns are read from the schema during the first PerformFetch.
func WithPrimaryKeyIdentity[R record.TableRecord]() Option[R] {
	return func(c *Controller[R]) {
		c.buildID = func(ctx context.Context, q record.Querier) (record.Identity[R], error) {
			return record.ByPrimaryKey[R](ctx, q)
		}
	}
}

// WithAfterFetch runs hook once on each freshly decoded record. When
// identity is computed on records, the hook must leave it stable.
func WithAfterFetch[R any](hook record.AfterFetchHook[R]) Option[R] {
	return func(c *Controller[R]) {
		c.hook = hook
	}
}

// WithLogger sets the controller's logger. Defaults to slog.Default().
func WithLogger[R any](logger *slog.Logger) Option[R] {
	return func(c *Controller[R]) {
		c.logger = logger
	}
}

// WithErrorHandler receives commit-time fetch and decode errors, on the
// context that produced them. Without a handler, errors are only logged.
func WithErrorHandler[R any](fn func(error)) Option[R] {
	return func(c *Controller[R]) {
		c.onError = fn
	}
}

// New creates a controller over src. decode materializes records from
// fetched rows; consumer is the serial context delegate callbacks and the
// read API run on. The controller does not touch the database until
// PerformFetch.
//
// Without an identity option every record is distinct: changes surface as
// deletions and insertions, never moves or updates.
func New[R any](st *store.Store, src *source.Source, decode record.Decoder[R], consumer Executor, opts ...Option[R]) *Controller[R] {
	c := &Controller[R]{
		store:    st,
		src:      src,
		decode:   decode,
		consumer: consumer,
		diffQ:    NewSerialQueue(),
		logger:   slog.Default(),
	}
	c.buildID = func(context.Context, record.Querier) (record.Identity[R], error) {
		return record.AlwaysDistinct[R](), nil
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDelegate installs the delegate. Must run on the consumer context.
// The controller does not manage the delegate's lifetime; Close stops all
// deliveries without touching it.
func (c *Controller[R]) SetDelegate(d RecordsDelegate[R]) {
	c.delegate = d
}

// PerformFetch loads the projection. Must run on the consumer context.
//
// The fetch is a synchronous job on the store's writer context. On first
// call it also builds the record identity and attaches the controller as a
// transaction observer; configuration errors (bad SQL, argument mismatch)
// return before anything is attached.
//
// A later call is a reset, not a diffed update: the projection and the
// diff baseline are replaced without delegate events, and scripts from
// transactions observed before the reset are discarded.
func (c *Controller[R]) PerformFetch(ctx context.Context) error {
	if c.closed.Load() {
		return store.ErrClosed
	}

	var items []*record.Item[R]
	err := c.store.Write(ctx, func(tx *sql.Tx) error {
		// Stamp the new generation on the writer context: commits already
		// processed carry the old one and their scripts will be dropped.
		c.generation.Add(1)

		stmt, err := c.src.Prepare(ctx, tx)
		if err != nil {
			return err
		}
		items, err = record.FetchAll(ctx, tx, stmt.SQL, stmt.Args, c.decode, c.hook)
		if err != nil {
			return err
		}
		c.observedTables = stmt.SourceTables

		if !c.attached {
			identity, err := c.buildID(ctx, tx)
			if err != nil {
				return err
			}
			c.identity = identity
			c.store.AddTransactionObserver(c)
			c.attached = true
		}

		// Reset the diff baseline from the writer context, so the reset is
		// queued ahead of the diff of any later commit and no diff runs
		// against a snapshot from before the refetch.
		baseline := items
		c.diffQ.Submit(func() {
			c.diffSnapshot = baseline
		})
		return nil
	})
	if err != nil {
		return err
	}

	c.mainSnapshot = items
	c.fetched = true
	return nil
}

// Close detaches the controller from the pipeline. Pending diff and
// delivery jobs drop at dispatch; the observer stays registered but inert.
// Close is idempotent and safe from any context.
func (c *Controller[R]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.diffQ.Close()
}

// Flush waits until every transaction committed so far has flowed through
// the pipeline. Intended for tests and orderly shutdown.
func (c *Controller[R]) Flush(ctx context.Context) error {
	// Writer first: commits already in the queue finish and hand off.
	if err := c.store.Barrier(ctx, func(store.Querier) error { return nil }); err != nil {
		return err
	}

	done := make(chan struct{})
	submitted := c.diffQ.Submit(func() {
		if !c.consumer.Submit(func() { close(done) }) {
			close(done)
		}
	})
	if !submitted {
		return store.ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DatabaseChanged implements store.TransactionObserver. Writer context.
func (c *Controller[R]) DatabaseChanged(change store.RowChange) {
	if c.dirty || c.closed.Load() {
		return
	}
	if _, ok := c.observedTables[strings.ToLower(change.Table)]; ok {
		c.dirty = true
	}
}

// DatabaseWillCommit implements store.TransactionObserver. Writer context.
func (c *Controller[R]) DatabaseWillCommit() {}

// DatabaseDidRollback implements store.TransactionObserver. Writer context.
func (c *Controller[R]) DatabaseDidRollback() {
	c.dirty = false
}

// DatabaseDidCommit implements store.TransactionObserver. Writer context.
//
// A commit that touched an observed table refetches the items and hands
// them to the diff context. A refetch failure drops this transaction and
// surfaces through the error handler; the next relevant commit retries.
func (c *Controller[R]) DatabaseDidCommit(q store.Querier) {
	if !c.dirty {
		return
	}
	c.dirty = false
	if c.closed.Load() {
		return
	}

	ctx := context.Background()
	stmt, err := c.src.Prepare(ctx, q)
	if err != nil {
		c.fail(&FetchError{Err: err})
		return
	}
	items, err := record.FetchAll(ctx, q, stmt.SQL, stmt.Args, c.decode, c.hook)
	if err != nil {
		c.fail(&FetchError{Query: stmt.SQL, Err: err})
		return
	}

	gen := c.generation.Load()
	c.diffQ.Submit(func() {
		c.runDiff(gen, items)
	})
}

// runDiff computes the edit script against the diff baseline and advances
// it. Diff context.
func (c *Controller[R]) runDiff(gen int64, items []*record.Item[R]) {
	if c.closed.Load() || gen != c.generation.Load() {
		return
	}

	changes := diff.Compute(c.diffSnapshot, items, c.identity)
	c.diffSnapshot = items
	if len(changes) == 0 {
		return
	}

	c.consumer.Submit(func() {
		c.deliver(gen, items, changes)
	})
}

// deliver swaps the public projection and invokes the delegate in script
// order. Consumer context.
func (c *Controller[R]) deliver(gen int64, items []*record.Item[R], changes []diff.Change[R]) {
	if c.closed.Load() || gen != c.generation.Load() {
		return
	}

	d := c.delegate
	if d != nil {
		d.WillChangeRecords()
	}
	c.mainSnapshot = items
	if d == nil {
		return
	}
	for _, ch := range changes {
		rec, err := ch.Item.Record()
		if err != nil {
			c.fail(fmt.Errorf("decode record for %s: %w", ch.Kind, err))
			continue
		}
		d.DidChangeRecord(rec, eventFromChange(ch))
	}
	d.DidChangeRecords()
}

func (c *Controller[R]) fail(err error) {
	c.logger.Error("fetched records controller error", "error", err)
	if c.onError != nil {
		c.onError(err)
	}
}
