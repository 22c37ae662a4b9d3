package diff

import "fmt"

// Status tags a diff entry as an addition or a deletion.
type Status int

const (
	// Added marks a value present in the new sequence only.
	Added Status = iota + 1
	// Deleted marks a value present in the old sequence only.
	Deleted
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// NotMoved is the Moved value of an entry with no move correlation.
const NotMoved = -1

// Entry is one structural edit.
//
// For an Added entry Index is the position in the new sequence and Moved is
// the old index of the correlated deletion. For a Deleted entry Index is the
// position in the old sequence and Moved is the new index of the correlated
// addition.
type Entry[T any] struct {
	Status Status
	Index  int
	Value  T
	Moved  int
}

// IsMove reports whether the entry is one half of a move.
func (e Entry[T]) IsMove() bool { return e.Moved != NotMoved }

// PostOperationIndex returns the entry's position in the partially edited
// sequence, given the running count of additions minus deletions applied
// before it.
func (e Entry[T]) PostOperationIndex(editOffset int) int {
	if e.Status == Deleted {
		return e.Index + editOffset
	}
	return e.Index
}

func (e Entry[T]) String() string {
	if e.IsMove() {
		return fmt.Sprintf("%s@%d(%v, moved %d)", e.Status, e.Index, e.Value, e.Moved)
	}
	return fmt.Sprintf("%s@%d(%v)", e.Status, e.Index, e.Value)
}

// AddedAt returns an addition without move correlation.
func AddedAt[T any](index int, value T) Entry[T] {
	return Entry[T]{Status: Added, Index: index, Value: value, Moved: NotMoved}
}

// DeletedAt returns a deletion without move correlation.
func DeletedAt[T any](index int, value T) Entry[T] {
	return Entry[T]{Status: Deleted, Index: index, Value: value, Moved: NotMoved}
}

// Script is an ordered edit script.
type Script[T any] []Entry[T]

// Partition splits the script into pure additions and pure deletions,
// dropping both halves of every move.
func (s Script[T]) Partition() (added, deleted Script[T]) {
	for _, e := range s {
		if e.IsMove() {
			continue
		}
		switch e.Status {
		case Added:
			added = append(added, e)
		case Deleted:
			deleted = append(deleted, e)
		}
	}
	return added, deleted
}

// Moves returns the number of correlated moves in the script.
func (s Script[T]) Moves() int {
	n := 0
	for _, e := range s {
		if e.Status == Added && e.IsMove() {
			n++
		}
	}
	return n
}

// OnlyMoves reports whether every entry is half of a correlated move. An
// empty script reports true.
func (s Script[T]) OnlyMoves() bool {
	for _, e := range s {
		if !e.IsMove() {
			return false
		}
	}
	return true
}

// Apply replays the script against old and returns the resulting sequence.
// old is not modified.
func Apply[T any](old []T, script Script[T]) ([]T, error) {
	out := make([]T, len(old), len(old)+len(script))
	copy(out, old)
	offset := 0
	for i, e := range script {
		pos := e.PostOperationIndex(offset)
		switch e.Status {
		case Added:
			if pos < 0 || pos > len(out) {
				return nil, fmt.Errorf("entry %d: insert position %d out of range [0,%d]", i, pos, len(out))
			}
			out = append(out, e.Value)
			copy(out[pos+1:], out[pos:])
			out[pos] = e.Value
			offset++
		case Deleted:
			if pos < 0 || pos >= len(out) {
				return nil, fmt.Errorf("entry %d: delete position %d out of range [0,%d)", i, pos, len(out))
			}
			out = append(out[:pos], out[pos+1:]...)
			offset--
		default:
			return nil, fmt.Errorf("entry %d: unknown status %v", i, e.Status)
		}
	}
	return out, nil
}
