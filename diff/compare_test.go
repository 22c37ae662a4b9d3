package diff

import (
	"fmt"
	"slices"
	"strings"
	"testing"
)

func eqString(a, b string) bool { return a == b }

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}

func TestCompare_Identical(t *testing.T) {
	script := Compare(split("abc"), split("abc"), eqString)
	if len(script) != 0 {
		t.Errorf("expected empty script, got %v", script)
	}
}

func TestCompare_Append(t *testing.T) {
	script := Compare(split("abc"), split("abcd"), eqString)
	if len(script) != 1 {
		t.Fatalf("expected 1 entry, got %v", script)
	}
	e := script[0]
	if e.Status != Added || e.Index != 3 || e.Value != "d" || e.IsMove() {
		t.Errorf("got %v, want added@3(d)", e)
	}
}

func TestCompare_DeleteMiddle(t *testing.T) {
	script := Compare(split("abcd"), split("abd"), eqString)
	if len(script) != 1 {
		t.Fatalf("expected 1 entry, got %v", script)
	}
	e := script[0]
	if e.Status != Deleted || e.Index != 2 || e.Value != "c" {
		t.Errorf("got %v, want deleted@2(c)", e)
	}
}

func TestCompare_ReplaceDeletesBeforeAdding(t *testing.T) {
	script := Compare(split("abc"), split("axc"), eqString)
	if len(script) != 2 {
		t.Fatalf("expected 2 entries, got %v", script)
	}
	if script[0].Status != Deleted || script[0].Index != 1 || script[0].Value != "b" {
		t.Errorf("first entry: got %v, want deleted@1(b)", script[0])
	}
	if script[1].Status != Added || script[1].Index != 1 || script[1].Value != "x" {
		t.Errorf("second entry: got %v, want added@1(x)", script[1])
	}
}

func TestCompare_DetectsMoves(t *testing.T) {
	script := Compare(split("abc"), split("cab"), eqString)
	if got := script.Moves(); got != 1 {
		t.Fatalf("expected 1 move, got %d in %v", got, script)
	}
	for _, e := range script {
		if !e.IsMove() {
			t.Errorf("expected every entry to be a move half, got %v", e)
			continue
		}
		if e.Value != "c" {
			t.Errorf("expected c to be moved, got %v", e)
		}
		switch e.Status {
		case Added:
			if e.Index != 0 || e.Moved != 2 {
				t.Errorf("added half: got %v, want added@0 moved from 2", e)
			}
		case Deleted:
			if e.Index != 2 || e.Moved != 0 {
				t.Errorf("deleted half: got %v, want deleted@2 moved to 0", e)
			}
		}
	}
}

func TestCompareWith_MovesDisabled(t *testing.T) {
	script := CompareWith(split("abc"), split("cab"), eqString, Options{})
	if script.Moves() != 0 {
		t.Errorf("expected no moves, got %v", script)
	}
	added, deleted := script.Partition()
	if len(added) != 1 || len(deleted) != 1 {
		t.Errorf("expected one addition and one deletion, got %v / %v", added, deleted)
	}
}

func TestPartition_DropsMoves(t *testing.T) {
	script := Compare(split("abcd"), split("dbx"), eqString)
	added, deleted := script.Partition()
	for _, e := range append(added, deleted...) {
		if e.IsMove() {
			t.Errorf("partition kept move half %v", e)
		}
	}
	if len(added)+len(deleted)+2*script.Moves() != len(script) {
		t.Errorf("partition lost entries: %v", script)
	}
}

func TestScript_OnlyMoves(t *testing.T) {
	if !Compare(split("abc"), split("cab"), eqString).OnlyMoves() {
		t.Error("expected a pure reorder to hold only moves")
	}
	if Compare(split("abc"), split("cax"), eqString).OnlyMoves() {
		t.Error("expected a replacement to hold structural entries")
	}
	if !(Script[string]{}).OnlyMoves() {
		t.Error("expected an empty script to report true")
	}
}

func TestCompare_ApplyRoundTrip(t *testing.T) {
	cases := []struct{ old, next string }{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"abc", "abc"},
		{"abc", "cba"},
		{"abcdef", "badcfe"},
		{"aaab", "baaa"},
		{"kitten", "sitting"},
		{"abcabba", "cbabac"},
		{"abcde", "xaybzc"},
		{"53142", "12345"},
	}

	for _, tc := range cases {
		t.Run(tc.old+"->"+tc.next, func(t *testing.T) {
			old, next := split(tc.old), split(tc.next)
			script := Compare(old, next, eqString)

			got, err := Apply(old, script)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, next) && !(len(got) == 0 && len(next) == 0) {
				t.Errorf("got %v, want %v (script %v)", got, next, script)
			}

			offset, last := 0, -1
			for _, e := range script {
				pos := e.PostOperationIndex(offset)
				if pos < last {
					t.Errorf("entry %v out of order: position %d after %d", e, pos, last)
				}
				last = pos
				if e.Status == Added {
					offset++
				} else {
					offset--
				}
			}
		})
	}
}

func TestApply_RejectsOutOfRange(t *testing.T) {
	_, err := Apply([]string{"a"}, Script[string]{DeletedAt(3, "x")})
	if err == nil {
		t.Error("expected error for out of range deletion")
	}
}

func TestStatusString(t *testing.T) {
	if Added.String() != "added" || Deleted.String() != "deleted" {
		t.Errorf("unexpected status names %q %q", Added, Deleted)
	}
}

func checkScript(t *testing.T, old, next []string, script Script[string]) {
	t.Helper()
	got, err := Apply(old, script)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, next) && !(len(got) == 0 && len(next) == 0) {
		t.Errorf("got %v, want %v (script %v)", got, next, script)
	}
	offset, last := 0, -1
	for _, e := range script {
		pos := e.PostOperationIndex(offset)
		if pos < last {
			t.Errorf("entry %v out of order: position %d after %d", e, pos, last)
		}
		last = pos
		if e.Status == Added {
			offset++
		} else {
			offset--
		}
	}
}

func TestFromOrigins(t *testing.T) {
	cases := []struct {
		name      string
		old, next string
		origin    []int
		entries   int
		moves     int
	}{
		{"unchanged", "abc", "abc", []int{0, 1, 2}, 0, 0},
		{"append", "abc", "abcd", []int{0, 1, 2, -1}, 1, 0},
		{"delete middle", "abcd", "abd", []int{0, 1, 3}, 1, 0},
		{"replace", "abc", "axc", []int{0, -1, 2}, 2, 0},
		{"front to back", "abcde", "bcdea", []int{1, 2, 3, 4, 0}, 2, 1},
		{"reverse", "abcd", "dcba", []int{3, 2, 1, 0}, 6, 3},
		{"clear", "abc", "", nil, 3, 0},
		{"from empty", "", "ab", []int{-1, -1}, 2, 0},
		{"mixed", "abcdef", "fxbcda", []int{5, -1, 1, 2, 3, 0}, 6, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			old, next := split(tc.old), split(tc.next)
			script := FromOrigins(old, next, tc.origin, eqString, Options{})
			checkScript(t, old, next, script)
			if len(script) != tc.entries {
				t.Errorf("expected %d entries, got %v", tc.entries, script)
			}
			if script.Moves() != tc.moves {
				t.Errorf("expected %d moves, got %v", tc.moves, script)
			}
		})
	}
}

func TestFromOrigins_DetectsEqualValues(t *testing.T) {
	old, next := split("abc"), split("bca")
	// The element at the end was re-added rather than moved.
	script := FromOrigins(old, next, []int{1, 2, -1}, eqString, DefaultOptions())
	checkScript(t, old, next, script)
	if script.Moves() != 1 || !script.OnlyMoves() {
		t.Errorf("expected the re-added value paired as a move, got %v", script)
	}
}

func TestCompareWith_BandedRegion(t *testing.T) {
	n := 2000
	old := make([]string, n)
	for i := range old {
		old[i] = fmt.Sprint(i)
	}
	next := append(slices.Clone(old[1:]), old[0])

	dist := distances(old, next, eqString)
	for i, row := range dist.rows {
		if len(row) > 3 {
			t.Fatalf("row %d holds %d cells, want at most 3", i, len(row))
		}
	}

	script := Compare(old, next, eqString)
	checkScript(t, old, next, script)
	if script.Moves() == 0 {
		t.Errorf("expected the relocated element to be reported as a move")
	}
}
