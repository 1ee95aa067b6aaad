package record

import (
	"context"
	"database/sql"
	"fmt"
)

// Identity decides whether two decoded records denote the same logical
// entity, regardless of column values.
type Identity[R any] func(a, b R) bool

// AlwaysDistinct is the default identity: no two records are ever the same
// entity. Diffs computed under it never merge changes into moves or updates,
// which is degraded but always correct.
func AlwaysDistinct[R any]() Identity[R] {
	return func(a, b R) bool { return false }
}

// TableRecord is the persistence capability required for primary-key
// identity. DatabaseTableName must be callable on the zero value.
type TableRecord interface {
	// DatabaseTableName returns the table the record maps to.
	DatabaseTableName() string
	// DatabaseValues returns the record's column values by column name.
	DatabaseValues() map[string]any
}

// Querier runs queries. Satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ByPrimaryKey builds an identity that compares records on their table's
// declared primary key columns. It needs a database handle because the key
// columns come from the schema, which is why controllers defer building it
// until the first fetch.
//
// A table without a declared primary key identifies rows by rowid: the
// record's DatabaseValues must then expose a "rowid" column.
func ByPrimaryKey[R TableRecord](ctx context.Context, q Querier) (Identity[R], error) {
	var zero R
	table := zero.DatabaseTableName()

	keyColumns, err := primaryKeyColumns(ctx, q, table)
	if err != nil {
		return nil, err
	}
	if len(keyColumns) == 0 {
		keyColumns = []string{"rowid"}
	}

	return func(a, b R) bool {
		av := a.DatabaseValues()
		bv := b.DatabaseValues()
		for _, c := range keyColumns {
			x, okA := av[c]
			y, okB := bv[c]
			if !okA || !okB {
				return false
			}
			if !ValueEqual(x, y) {
				return false
			}
		}
		return true
	}, nil
}

// primaryKeyColumns reads the primary key column names of table from the
// schema, in key order.
func primaryKeyColumns(ctx context.Context, q Querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, table)
	if err != nil {
		return nil, fmt.Errorf("record: read primary key of %q: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("record: read primary key of %q: %w", table, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record: read primary key of %q: %w", table, err)
	}
	return columns, nil
}
