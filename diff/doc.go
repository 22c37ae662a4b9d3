// Package diff describes structural edits between two versions of a
// sequence and computes them.
//
// A Script is an ordered list of Added and Deleted entries. A deletion and
// an addition of the same value can be correlated as a move through their
// Moved fields, so consumers can relocate per-element state instead of
// destroying and recreating it.
//
// # Ordering
//
// Entries are ordered by their post-operation index: for an addition that
// is its Index in the new sequence, for a deletion it is its Index in the
// old sequence plus the number of additions minus deletions that precede
// it. Walking a Script front to back therefore visits positions of the
// partially edited sequence in non-decreasing order.
//
// # Usage
//
//	script := diff.Compare(old, next, func(a, b string) bool { return a == b })
//	added, deleted := script.Partition()
package diff
