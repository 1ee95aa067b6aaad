// Package record holds the row-level data model for fetched records.
//
// A Row is an ordered snapshot of one database row: column names paired with
// the raw driver values SQLite produced. Rows are copied out of the cursor at
// fetch time so they stay valid after the statement is finalized.
//
// An Item pairs a Row with a lazily decoded record. Decoding happens at most
// once per Item, on first access, and may run an optional after-fetch hook on
// the freshly decoded record.
//
// An Identity is the caller's notion of "same logical entity": two records
// with different column values may still denote the same row (same primary
// key). The diff engine uses it to merge a deletion/insertion pair into a
// move or update. The default identity treats every record as distinct,
// which is always correct but surfaces every change as delete+insert.
package record
