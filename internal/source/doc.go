// Package source provides the uniform query handle a controller fetches
// from: either raw SQL with arguments, or a Request produced by a query
// builder. Preparing a source validates the SQL against the live schema,
// checks argument arity against the statement's placeholders, and resolves
// the set of tables the query reads - the scope used to decide whether a
// committed transaction is relevant.
package source
