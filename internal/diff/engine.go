package diff

import "github.com/roach88/livequery/internal/record"

// Compute returns a minimum-length edit script transforming old into new,
// then standardized: deletion/insertion pairs over the same logical record
// (per same) become Move or Update changes, and all Updates trail the
// structural changes.
//
// A nil identity behaves as record.AlwaysDistinct: nothing merges and the
// script is raw insertions and deletions.
func Compute[R any](prev, next []*record.Item[R], same record.Identity[R]) []Change[R] {
	if same == nil {
		same = record.AlwaysDistinct[R]()
	}
	return standardize(rawScript(prev, next), same)
}

// rawScript runs the Wagner-Fischer recurrence over script prefixes.
//
// d[i][j] holds a minimum-length script transforming old[:i] into new[:j].
// Item equality is by row contents. When several candidates share the
// minimum length the tie-break is deletion, then insertion, then
// substitution; golden tests pin the resulting shapes.
func rawScript[R any](prev, next []*record.Item[R]) []Change[R] {
	m, n := len(prev), len(next)

	// Degenerate sequences produce pure scripts without touching the matrix.
	if m == 0 && n == 0 {
		return nil
	}

	d := make([][][]Change[R], m+1)
	for i := range d {
		d[i] = make([][]Change[R], n+1)
	}

	for i := 1; i <= m; i++ {
		d[i][0] = appendChange(d[i-1][0], deletion(prev[i-1], i-1))
	}
	for j := 1; j <= n; j++ {
		d[0][j] = appendChange(d[0][j-1], insertion(next[j-1], j-1))
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if prev[i-1].EqualRow(next[j-1]) {
				d[i][j] = d[i-1][j-1]
				continue
			}
			del := appendChange(d[i-1][j], deletion(prev[i-1], i-1))
			ins := appendChange(d[i][j-1], insertion(next[j-1], j-1))
			sub := appendChange(d[i-1][j-1], deletion(prev[i-1], i-1), insertion(next[j-1], j-1))

			best := del
			if len(ins) < len(best) {
				best = ins
			}
			if len(sub) < len(best) {
				best = sub
			}
			d[i][j] = best
		}
	}

	return d[m][n]
}

// appendChange extends a script prefix without aliasing the shared backing
// array of its source cell.
func appendChange[R any](prefix []Change[R], changes ...Change[R]) []Change[R] {
	out := make([]Change[R], 0, len(prefix)+len(changes))
	out = append(out, prefix...)
	out = append(out, changes...)
	return out
}
