package record

import (
	"bytes"
	"database/sql"
	"fmt"
	"reflect"
	"time"
)

// Row is an ordered mapping from column name to a raw database value.
//
// Values are whatever the driver produced: int64, float64, string, []byte,
// bool, time.Time, or nil. A Row owns its values - []byte payloads are copied
// at construction so the Row survives cursor reuse.
//
// Equality is by contents: same columns, in the same order, with equal
// values.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow builds a Row from parallel column and value slices.
// Both slices are copied; []byte values are deep-copied.
func NewRow(columns []string, values []any) Row {
	if len(columns) != len(values) {
		panic(fmt.Sprintf("record: NewRow with %d columns but %d values", len(columns), len(values)))
	}
	r := Row{
		columns: make([]string, len(columns)),
		values:  make([]any, len(values)),
		index:   make(map[string]int, len(columns)),
	}
	copy(r.columns, columns)
	for i, v := range values {
		r.values[i] = copyValue(v)
	}
	for i, c := range r.columns {
		// First occurrence wins for duplicate column names (e.g. joins).
		if _, ok := r.index[c]; !ok {
			r.index[c] = i
		}
	}
	return r
}

// ScanRow reads the current cursor position of rows into a Row.
// The caller advances the cursor (rows.Next) and checks rows.Err.
func ScanRow(rows *sql.Rows) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Row{}, fmt.Errorf("scan row: %w", err)
	}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Row{}, fmt.Errorf("scan row: %w", err)
	}
	return NewRow(columns, values), nil
}

// Columns returns the column names in projection order.
// The returned slice must not be mutated.
func (r Row) Columns() []string {
	return r.columns
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.columns)
}

// Value returns the value of the named column and whether the column exists.
func (r Row) Value(column string) (any, bool) {
	i, ok := r.index[column]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// ValueAt returns the value at a column position.
func (r Row) ValueAt(i int) any {
	return r.values[i]
}

// Equal reports whether two rows have the same columns in the same order
// with equal values.
func (r Row) Equal(other Row) bool {
	if len(r.columns) != len(other.columns) {
		return false
	}
	for i := range r.columns {
		if r.columns[i] != other.columns[i] {
			return false
		}
		if !ValueEqual(r.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// HasSameColumns reports whether both rows expose the same column set,
// ignoring order. Column-wise diffing is only defined when this holds.
func (r Row) HasSameColumns(other Row) bool {
	if len(r.index) != len(other.index) {
		return false
	}
	for c := range r.index {
		if _, ok := other.index[c]; !ok {
			return false
		}
	}
	return true
}

// ChangedValues returns, for each column whose value differs between old and
// r, the old value. Columns present in both rows with equal values are
// omitted. The caller checks HasSameColumns first.
func (r Row) ChangedValues(old Row) map[string]any {
	changed := make(map[string]any)
	for c, i := range r.index {
		oldValue, ok := old.Value(c)
		if !ok {
			continue
		}
		if !ValueEqual(r.values[i], oldValue) {
			changed[c] = oldValue
		}
	}
	return changed
}

// String renders the row for logs and test failures.
func (r Row) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s:%v", c, r.values[i])
	}
	buf.WriteByte(']')
	return buf.String()
}

// ValueEqual compares two raw database values.
//
// []byte compares by contents, time.Time by Equal. Mixed numeric types
// (int64 vs float64) are distinct values, matching SQLite's type affinity
// at the driver boundary.
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case int64, float64, string, bool:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}

func copyValue(v any) any {
	if b, ok := v.([]byte); ok {
		c := make([]byte, len(b))
		copy(c, b)
		return c
	}
	return v
}
