// Package diff computes minimal edit scripts between two ordered sequences
// of fetched items.
//
// Compute runs in two stages. First, a Wagner-Fischer edit-distance matrix
// finds a minimum-length script of insertions and deletions transforming the
// old sequence into the new one, with a pinned tie-break (deletion before
// insertion before substitution) so that equal-length scripts always come
// out in the same shape. Second, a standardization pass merges
// deletion/insertion pairs that refer to the same logical record - as decided
// by the caller's identity predicate - into Move or Update changes carrying a
// per-column old-value map. Updates are moved to the tail of the script so
// downstream consumers apply structural edits first.
//
// Indexes follow batch-update semantics: a deletion's From (and a move's
// From) is a position in the old sequence, an insertion's To (and a move's
// or update's To) is a position in the new sequence. Applying the script to
// the old sequence as one batch - removals at old positions, then additions
// at new positions, then in-place updates - yields the new sequence.
// Applying the changes one after another with shifting indexes does not.
// Tests pin the exact script shapes with
// golden files; any change to the tie-break rules shows up as a golden
// mismatch.
package diff
