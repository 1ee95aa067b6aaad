package record

import (
	"context"
	"fmt"
)

// FetchAll runs query with args against q and materializes every row into an
// Item. Rows are copied out of the cursor, so the returned items stay valid
// after the query completes. Records remain undecoded until accessed.
func FetchAll[R any](ctx context.Context, q Querier, query string, args []any, decode Decoder[R], hook AfterFetchHook[R]) ([]*Item[R], error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer rows.Close()

	var items []*Item[R]
	for rows.Next() {
		row, err := ScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		items = append(items, NewItem(row, decode, hook))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return items, nil
}
