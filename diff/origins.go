package diff

import (
	"cmp"
	"slices"
)

// FromOrigins returns the edit script turning old into next when the
// caller knows where every element of next came from: origin[j] is the
// index in old of next[j], or -1 when next[j] is new. Origins must be
// distinct.
//
// The elements whose origins form the longest increasing run stay in
// place; every other element with an origin becomes a correlated move.
// Old elements no origin refers to are deletions. With opts.DetectMoves,
// remaining deletions and additions of equal values are paired as well.
// The cost is linear in the sequence length, plus a log factor when the
// origins are out of order.
func FromOrigins[T any](old, next []T, origin []int, equal func(a, b T) bool, opts Options) Script[T] {
	keep := stayingPut(origin)
	target := make([]int, len(old))
	for i := range target {
		target[i] = NotMoved
	}
	for j, o := range origin {
		if o >= 0 {
			target[o] = j
		}
	}

	var script Script[T]
	i, j := 0, 0
	// emit writes the deletions of old[i:oldEnd], then the additions of
	// next[j:newEnd]. Deletions in a gap share one post-operation index,
	// which the additions start from.
	emit := func(oldEnd, newEnd int) {
		for ; i < oldEnd; i++ {
			script = append(script, Entry[T]{Status: Deleted, Index: i, Value: old[i], Moved: target[i]})
		}
		for ; j < newEnd; j++ {
			moved := NotMoved
			if origin[j] >= 0 {
				moved = origin[j]
			}
			script = append(script, Entry[T]{Status: Added, Index: j, Value: next[j], Moved: moved})
		}
	}
	for k := range next {
		if !keep[k] {
			continue
		}
		emit(origin[k], k)
		i, j = origin[k]+1, k+1
	}
	emit(len(old), len(next))

	if opts.DetectMoves && len(script) > 0 {
		limit := opts.CompareLimit
		if limit == 0 {
			limit = min(len(old), len(next)) * 10
		}
		findMoves(script, equal, limit)
	}
	return script
}

// stayingPut marks the positions whose origins form a longest increasing
// subsequence.
func stayingPut(origin []int) []bool {
	keep := make([]bool, len(origin))
	last, ordered := -1, true
	for _, o := range origin {
		if o < 0 {
			continue
		}
		if o < last {
			ordered = false
			break
		}
		last = o
	}
	if ordered {
		for k, o := range origin {
			keep[k] = o >= 0
		}
		return keep
	}

	// Patience sorting: tails[l] is the position ending the smallest-valued
	// increasing run of length l+1.
	var tails []int
	prev := make([]int, len(origin))
	for k, o := range origin {
		if o < 0 {
			continue
		}
		l, _ := slices.BinarySearchFunc(tails, o, func(p, v int) int { return cmp.Compare(origin[p], v) })
		prev[k] = -1
		if l > 0 {
			prev[k] = tails[l-1]
		}
		if l == len(tails) {
			tails = append(tails, k)
		} else {
			tails[l] = k
		}
	}
	if len(tails) == 0 {
		return keep
	}
	for k := tails[len(tails)-1]; k >= 0; k = prev[k] {
		keep[k] = true
	}
	return keep
}
