// Package controller implements the reactive fetched-records controller.
//
// A Controller owns an ordered, in-memory projection of a query's result
// set. After every committed transaction that touches a table the query
// reads, it refetches the results, computes a minimal edit script against
// the previous snapshot, and delivers the script to a delegate.
//
// Each transaction's effect flows through three strictly serial contexts:
//
//	writer:   the store's writer goroutine. Row-change notifications set a
//	          dirty flag; on commit, a dirty controller refetches and hands
//	          the fresh items to the diff queue.
//	diff:     a serial queue owned by the controller. Computes the edit
//	          script against the diff baseline, advances the baseline, and
//	          hands non-empty scripts to the consumer.
//	consumer: a serial executor supplied by the caller. Applies the script
//	          to the public projection and invokes the delegate.
//
// Because all three contexts are serial and handoffs preserve submission
// order, scripts arrive at the consumer in commit order, and applying them
// in order reproduces exactly the projection a refetch would observe.
//
// Every mutable field is pinned to one context; data crosses contexts only
// by being moved forward through queue jobs. Closing the controller marks
// it dead - jobs already queued check liveness at dispatch and drop.
package controller
