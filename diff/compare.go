package diff

// Options tunes Compare.
type Options struct {
	// DetectMoves correlates deletions and additions of equal values.
	DetectMoves bool
	// CompareLimit caps consecutive failed comparisons during move
	// detection. Zero uses ten times the shorter input length; a negative
	// value removes the cap.
	CompareLimit int
}

// DefaultOptions enables move detection with the default compare limit.
func DefaultOptions() Options {
	return Options{DetectMoves: true}
}

// Compare returns the edit script turning old into next using the default
// options.
func Compare[T any](old, next []T, equal func(a, b T) bool) Script[T] {
	return CompareWith(old, next, equal, DefaultOptions())
}

// CompareWith returns the edit script turning old into next. The script
// covers the region between the common prefix and suffix; inside it the
// edit search is limited to a band around the diagonal, so memory grows
// with the region length times the length difference.
func CompareWith[T any](old, next []T, equal func(a, b T) bool, opts Options) Script[T] {
	prefix := 0
	for prefix < len(old) && prefix < len(next) && equal(old[prefix], next[prefix]) {
		prefix++
	}
	suffix := 0
	for suffix < len(old)-prefix && suffix < len(next)-prefix &&
		equal(old[len(old)-1-suffix], next[len(next)-1-suffix]) {
		suffix++
	}

	a := old[prefix : len(old)-suffix]
	b := next[prefix : len(next)-suffix]
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	// Entries are collected back to front and reversed at the end.
	var rev Script[T]
	switch {
	case len(a) == 0:
		for j := len(b) - 1; j >= 0; j-- {
			rev = append(rev, AddedAt(prefix+j, b[j]))
		}
	case len(b) == 0:
		for i := len(a) - 1; i >= 0; i-- {
			rev = append(rev, DeletedAt(prefix+i, a[i]))
		}
	default:
		rev = backtrack(distances(a, b, equal), a, b, prefix)
	}

	if opts.DetectMoves {
		limit := opts.CompareLimit
		if limit == 0 {
			limit = min(len(old), len(next)) * 10
		}
		findMoves(rev, equal, limit)
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// band holds the edit distance matrix of a and b restricted to the
// diagonals within one step of the length difference. Cells outside the
// band read as unreachable.
type band struct {
	lo, hi []int
	rows   [][]int
	inf    int
}

func (m *band) at(i, j int) int {
	if i < 0 || j < m.lo[i] || j > m.hi[i] {
		return m.inf
	}
	return m.rows[i][j-m.lo[i]]
}

// distances builds the banded insert/delete edit distance matrix of a and
// b. Any path through the band is a valid edit script, though not always
// the shortest one.
func distances[T any](a, b []T, equal func(a, b T) bool) *band {
	d := len(b) - len(a)
	m := &band{
		lo:   make([]int, len(a)+1),
		hi:   make([]int, len(a)+1),
		rows: make([][]int, len(a)+1),
		inf:  len(a) + len(b) + 1,
	}
	for i := 0; i <= len(a); i++ {
		lo := max(0, i+min(d, 0)-1)
		hi := min(len(b), i+max(d, 0)+1)
		m.lo[i], m.hi[i] = lo, hi
		row := make([]int, hi-lo+1)
		m.rows[i] = row
		for j := lo; j <= hi; j++ {
			var v int
			switch {
			case i == 0:
				v = j
			case j == 0:
				v = i
			default:
				v = min(m.at(i-1, j), m.at(i, j-1)) + 1
				if equal(a[i-1], b[j-1]) {
					v = min(v, m.at(i-1, j-1))
				}
			}
			row[j-lo] = v
		}
	}
	return m
}

// backtrack walks the matrix from the bottom-right corner, preferring
// additions over deletions, and emits entries in reverse order.
func backtrack[T any](dist *band, a, b []T, offset int) Script[T] {
	var rev Script[T]
	i, j := len(a), len(b)
	for i > 0 || j > 0 {
		step := dist.at(i, j) - 1
		switch {
		case j > 0 && step == dist.at(i, j-1):
			j--
			rev = append(rev, AddedAt(offset+j, b[j]))
		case i > 0 && step == dist.at(i-1, j):
			i--
			rev = append(rev, DeletedAt(offset+i, a[i]))
		default:
			i--
			j--
		}
	}
	return rev
}

// findMoves pairs deletions with additions of equal values. Each deletion
// scans the remaining additions; a matched addition is consumed. Scanning
// stops once limit consecutive comparisons failed (limit <= 0 means never).
func findMoves[T any](rev Script[T], equal func(a, b T) bool, limit int) {
	var left, right []int
	for i, e := range rev {
		if e.IsMove() {
			continue
		}
		if e.Status == Deleted {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return
	}

	failed := 0
	for _, l := range left {
		if limit > 0 && failed >= limit {
			break
		}
		r := 0
		for ; r < len(right); r++ {
			del, add := &rev[l], &rev[right[r]]
			if equal(del.Value, add.Value) {
				del.Moved = add.Index
				add.Moved = del.Index
				right = append(right[:r], right[r+1:]...)
				r = 0
				failed = 0
				break
			}
		}
		failed += r
	}
}
