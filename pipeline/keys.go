package pipeline

import (
	"cmp"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/livecoll/reactive"
)

// Keys is a sort key tuple, compared lexicographically.
type Keys []any

// By builds a key tuple.
func By(keys ...any) Keys { return Keys(keys) }

// Descending wraps a key so it sorts in reverse within a tuple.
type Descending struct {
	Value any
}

// Desc marks v as descending.
func Desc(v any) Descending { return Descending{Value: v} }

// Comparator orders two single keys, returning a negative number, zero or
// a positive number.
type Comparator func(a, b any) int

// compareKeys compares tuples component by component. A component flips
// direction when both sides are Descending; a shorter tuple that is a
// prefix of a longer one sorts first.
func compareKeys(a, b Keys, compare Comparator) int {
	for i := range min(len(a), len(b)) {
		x, y := a[i], b[i]
		dx, xDesc := x.(Descending)
		dy, yDesc := y.(Descending)
		var c int
		if xDesc && yDesc {
			c = compare(dy.Value, dx.Value)
		} else {
			if xDesc {
				x = dx.Value
			}
			if yDesc {
				y = dy.Value
			}
			c = compare(x, y)
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// keysEqual reports whether two tuples hold identical components with the
// same directions.
func keysEqual(a, b Keys) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		dx, xDesc := a[i].(Descending)
		dy, yDesc := b[i].(Descending)
		switch {
		case xDesc != yDesc:
			return false
		case xDesc:
			if !reactive.Identical(dx.Value, dy.Value) {
				return false
			}
		default:
			if !reactive.Identical(a[i], b[i]) {
				return false
			}
		}
	}
	return true
}

// sameShape reports whether two tuples have the same length and the same
// direction in every component.
func sameShape(a, b Keys) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		_, xDesc := a[i].(Descending)
		_, yDesc := b[i].(Descending)
		if xDesc != yDesc {
			return false
		}
	}
	return true
}

type keyRank int

const (
	rankNil keyRank = iota
	rankNumber
	rankString
	rankBool
	rankTime
	rankComparer
	rankOther
)

type comparer interface {
	Compare(other any) int
}

var timeType = reflect.TypeOf(time.Time{})

func rankOf(v any) (keyRank, reflect.Value) {
	if v == nil {
		return rankNil, reflect.Value{}
	}
	if _, ok := v.(comparer); ok {
		return rankComparer, reflect.Value{}
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == timeType {
		return rankTime, rv
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rankNumber, rv
	case reflect.String:
		return rankString, rv
	case reflect.Bool:
		return rankBool, rv
	}
	return rankOther, rv
}

// DefaultComparator orders nil first, then numbers of any kind compared by
// value, then strings, bools (false first), time.Time values, types with a
// Compare(any) int method, and finally everything else by type name and
// formatted value. It never panics.
func DefaultComparator(a, b any) int {
	ra, va := rankOf(a)
	rb, vb := rankOf(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNil:
		return 0
	case rankNumber:
		return compareNumbers(va, vb)
	case rankString:
		return cmp.Compare(va.String(), vb.String())
	case rankBool:
		return cmp.Compare(b2i(va.Bool()), b2i(vb.Bool()))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankComparer:
		if reflect.TypeOf(a) == reflect.TypeOf(b) {
			return a.(comparer).Compare(b)
		}
	}
	if c := cmp.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)); c != 0 {
		return c
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareNumbers(a, b reflect.Value) int {
	switch {
	case isFloat(a) || isFloat(b):
		return cmp.Compare(toFloat(a), toFloat(b))
	case isUnsigned(a) && isUnsigned(b):
		return cmp.Compare(a.Uint(), b.Uint())
	case !isUnsigned(a) && !isUnsigned(b):
		return cmp.Compare(a.Int(), b.Int())
	case isUnsigned(b):
		if a.Int() < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.Int()), b.Uint())
	default:
		if b.Int() < 0 {
			return 1
		}
		return cmp.Compare(a.Uint(), uint64(b.Int()))
	}
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func isUnsigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case isUnsigned(v):
		return float64(v.Uint())
	default:
		return float64(v.Int())
	}
}
