package store

import (
	"context"
	"database/sql"
)

// Querier prepares and runs queries. Satisfied by *sql.DB, *sql.Conn and
// *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// TransactionObserver receives the store's change stream.
//
// All four callbacks run on the writer goroutine, strictly serialized with
// transactions. Implementations must not call Write from inside a callback
// (the writer goroutine would deadlock on itself); DatabaseDidCommit may
// query through the provided Querier.
type TransactionObserver interface {
	// DatabaseChanged reports one row change inside the open transaction.
	DatabaseChanged(change RowChange)

	// DatabaseWillCommit runs just before the transaction commits.
	DatabaseWillCommit()

	// DatabaseDidCommit runs after a successful commit. The Querier reads
	// the post-commit state.
	DatabaseDidCommit(q Querier)

	// DatabaseDidRollback runs after the transaction rolled back.
	DatabaseDidRollback()
}

// AddTransactionObserver registers obs for all future transactions.
//
// Must be called on the writer goroutine, i.e. from inside a Write or Barrier
// job. Registering the same observer twice is a no-op.
func (s *Store) AddTransactionObserver(obs TransactionObserver) {
	for _, o := range s.observers {
		if o == obs {
			return
		}
	}
	s.observers = append(s.observers, obs)
}

// RemoveTransactionObserver unregisters obs. Must be called on the writer
// goroutine.
func (s *Store) RemoveTransactionObserver(obs TransactionObserver) {
	for i, o := range s.observers {
		if o == obs {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Store) dispatchRowChange(change RowChange) {
	for _, o := range s.observers {
		o.DatabaseChanged(change)
	}
}

func (s *Store) dispatchWillCommit() {
	for _, o := range s.observers {
		o.DatabaseWillCommit()
	}
}

func (s *Store) dispatchDidCommit() {
	for _, o := range s.observers {
		o.DatabaseDidCommit(s.db)
	}
}

func (s *Store) dispatchDidRollback() {
	for _, o := range s.observers {
		o.DatabaseDidRollback()
	}
}
