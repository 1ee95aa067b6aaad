// Package livequery keeps an ordered, in-memory projection of a SQLite
// query's result set and, after every committed transaction that touches a
// table the query reads, delivers a minimal edit script - insertions,
// deletions, moves and updates with per-column old values - to a delegate.
//
// The moving parts:
//
//   - Open a Store: a SQLite handle behind a single writer goroutine whose
//     transactions are observable.
//   - Build a Source from SQL and arguments (or a request builder).
//   - Create a Controller over the source with a decode function and a
//     serial consumer Executor, then call PerformFetch.
//   - Apply writes through Store.Write; the delegate receives one edit
//     script per relevant committed transaction, in commit order.
//
// See the package documentation of internal/controller for the threading
// model.
package livequery

import (
	"github.com/roach88/livequery/internal/controller"
	"github.com/roach88/livequery/internal/record"
	"github.com/roach88/livequery/internal/request"
	"github.com/roach88/livequery/internal/source"
	"github.com/roach88/livequery/internal/store"
)

// Store is a SQLite database behind a single writer goroutine.
type Store = store.Store

// RowChange describes one row modification inside a transaction.
type RowChange = store.RowChange

// TransactionObserver receives the store's change stream.
type TransactionObserver = store.TransactionObserver

// Open opens a store at path.
var Open = store.Open

// WithStoreLogger sets the store's logger.
var WithStoreLogger = store.WithLogger

// Row is an ordered snapshot of one database row.
type Row = record.Row

// Item pairs a fetched row with its lazily decoded record.
type Item[R any] = record.Item[R]

// Decoder materializes a record from a fetched row.
type Decoder[R any] = record.Decoder[R]

// Identity decides whether two records denote the same logical entity.
type Identity[R any] = record.Identity[R]

// TableRecord is the persistence capability primary-key identity needs.
type TableRecord = record.TableRecord

// Source is a query source: raw SQL or a builder request.
type Source = source.Source

// Request is a query produced by a builder.
type Request = source.Request

// ConfigurationError reports a malformed query source.
type ConfigurationError = source.ConfigurationError

// NewSQL creates a source from SQL text and arguments.
var NewSQL = source.NewSQL

// NewRequest creates a source from a builder request.
var NewRequest = source.NewRequest

// IsConfigurationError reports whether err is a ConfigurationError.
var IsConfigurationError = source.IsConfigurationError

// Select builds a single-table SELECT request.
var Select = request.NewSelect

// Controller tracks changes in the results of a query.
type Controller[R any] = controller.Controller[R]

// Option configures a Controller.
type Option[R any] = controller.Option[R]

// RecordsDelegate receives change notifications on the consumer context.
type RecordsDelegate[R any] = controller.RecordsDelegate[R]

// Event is the public form of one edit-script change.
type Event = controller.Event

// EventKind tags the event variants.
type EventKind = controller.EventKind

// IndexPath locates a record in the single-section projection.
type IndexPath = controller.IndexPath

// Executor runs functions one at a time, in submission order.
type Executor = controller.Executor

// SerialQueue is a FIFO Executor backed by one goroutine.
type SerialQueue = controller.SerialQueue

// FetchError reports a failed commit-time refetch.
type FetchError = controller.FetchError

// Event kinds.
const (
	EventInsertion = controller.EventInsertion
	EventDeletion  = controller.EventDeletion
	EventMove      = controller.EventMove
	EventUpdate    = controller.EventUpdate
)

// ErrNotFetched is returned by projection reads before the first fetch.
var ErrNotFetched = controller.ErrNotFetched

// NewSerialQueue creates a running serial queue.
var NewSerialQueue = controller.NewSerialQueue

// IsFetchError reports whether err is a FetchError.
var IsFetchError = controller.IsFetchError

// NewController creates a controller over src; see controller.New.
func NewController[R any](st *Store, src *Source, decode Decoder[R], consumer Executor, opts ...Option[R]) *Controller[R] {
	return controller.New(st, src, decode, consumer, opts...)
}

// WithIdentity supplies an explicit record identity predicate.
func WithIdentity[R any](same Identity[R]) Option[R] {
	return controller.WithIdentity(same)
}

// WithPrimaryKeyIdentity compares records by their table's primary key.
func WithPrimaryKeyIdentity[R TableRecord]() Option[R] {
	return controller.WithPrimaryKeyIdentity[R]()
}

// WithAfterFetch runs hook once on each freshly decoded record.
func WithAfterFetch[R any](hook record.AfterFetchHook[R]) Option[R] {
	return controller.WithAfterFetch(hook)
}

// WithErrorHandler receives commit-time fetch and decode errors.
func WithErrorHandler[R any](fn func(error)) Option[R] {
	return controller.WithErrorHandler[R](fn)
}
