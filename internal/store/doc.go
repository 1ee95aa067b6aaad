// Package store wraps a SQLite database behind a single writer.
//
// All writes flow through one goroutine - the writer context. Write submits
// a job that runs inside a transaction on that goroutine and reports the
// commit or rollback result to the caller synchronously. Because SQLite
// serializes writers anyway, funneling them through one goroutine costs
// nothing and buys a strict, observable transaction order.
//
// The store is also the change-notification source. Each connection is
// opened with an update hook that reports every row insert, update and
// delete to the registered transaction observers, and the writer loop
// brackets those notifications with commit/rollback callbacks at the
// transaction boundary. Observers therefore see, strictly serialized on the
// writer goroutine:
//
//	DatabaseChanged*  (per modified row, inside the transaction)
//	DatabaseWillCommit, then DatabaseDidCommit (or DatabaseDidRollback
//	                    if the commit itself fails)
//	  - or, when the job returns an error -
//	DatabaseDidRollback (without DatabaseWillCommit)
//
// SQLite forbids statements inside sqlite3_commit_hook, so commit
// notification is issued by the writer loop immediately after tx.Commit()
// returns rather than from the hook itself; since every write runs through
// the loop, observers see exactly the commits the hook would report, and
// DatabaseDidCommit may freely query the database.
package store
