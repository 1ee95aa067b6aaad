package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"gopkg.in/tomb.v2"
)

// ErrClosed is returned by Write and Barrier after Close.
var ErrClosed = errors.New("store: closed")

// Store is a SQLite database behind a single writer goroutine.
type Store struct {
	db     *sql.DB
	queue  *jobQueue
	tomb   tomb.Tomb
	logger *slog.Logger

	// observers is owned by the writer goroutine. Mutated only via
	// Add/RemoveTransactionObserver from inside writer jobs.
	observers []TransactionObserver
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open creates or opens a SQLite database at the given path and starts the
// writer goroutine.
//
// The connection is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Each store registers its own driver instance so the connect hook can wire
// the update hook into this store's observer dispatch.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		queue:  newJobQueue(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Driver names are global; a unique name per store keeps each connect
	// hook bound to its own dispatcher.
	driverName := "sqlite3_livequery_" + uuid.NewString()
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			conn.RegisterUpdateHook(func(op int, database, table string, rowid int64) {
				s.dispatchRowChange(RowChange{
					Op:       changeOpFromSQLite(op),
					Database: database,
					Table:    table,
					Rowid:    rowid,
				})
			})
			return nil
		},
	})

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY and keeps the update hook on the connection every
	// statement runs on.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s.db = db
	s.tomb.Go(s.writeLoop)
	return s, nil
}

// Close stops the writer goroutine and closes the database.
// Jobs still queued fail with ErrClosed.
func (s *Store) Close() error {
	for _, j := range s.queue.close() {
		j.done <- ErrClosed
	}
	s.tomb.Kill(nil)
	err := s.tomb.Wait()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// DB returns the underlying handle for direct reads.
// Writes through it bypass transaction observation - use Write instead.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Write runs fn inside a transaction on the writer goroutine and returns
// after the transaction committed or rolled back. A non-nil error from fn
// rolls the transaction back and is returned.
//
// Registered observers see each row change fn makes, then the commit or
// rollback, all before Write returns.
func (s *Store) Write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.submit(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", "error", rbErr)
			}
			s.dispatchDidRollback()
			return err
		}

		s.dispatchWillCommit()
		if err := tx.Commit(); err != nil {
			s.dispatchDidRollback()
			return fmt.Errorf("commit: %w", err)
		}
		s.dispatchDidCommit()
		return nil
	})
}

// Barrier runs fn on the writer goroutine outside any transaction. Use it
// for work that must be serialized with transactions but is not one:
// attaching observers, consistent reads, draining in tests.
func (s *Store) Barrier(ctx context.Context, fn func(q Querier) error) error {
	return s.submit(ctx, func() error {
		return fn(s.db)
	})
}

func (s *Store) submit(ctx context.Context, run func() error) error {
	j := writeJob{run: run, done: make(chan error, 1)}
	if !s.queue.enqueue(j) {
		return ErrClosed
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		// The job may still run later; the caller just stops waiting.
		return ctx.Err()
	case <-s.tomb.Dying():
		return ErrClosed
	}
}

// writeLoop is the writer goroutine: it drains the job queue in FIFO order
// until the store closes.
func (s *Store) writeLoop() error {
	for {
		j, ok := s.queue.tryDequeue()
		if !ok {
			select {
			case <-s.queue.wait():
				continue
			case <-s.tomb.Dying():
				return nil
			}
		}
		j.done <- j.run()
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
