package table

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// TimeLayout formats time.Time cells
const TimeLayout = "2006-01-02 15:04:05"

// Text renders a raw column value the way search and default cells see it
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(TimeLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(TimeLayout)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return Text(rv.Elem().Interface())
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// Compare orders two raw values: numbers numerically, times
// chronologically, booleans false first and anything else by text.
// Nil sorts before every other value.
func Compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if c, ok := compareIntegers(va, vb); ok {
		return c
	}
	if fa, ok := number(va); ok {
		if fb, ok := number(vb); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool {
		return compareBool(va.Bool(), vb.Bool())
	}
	if va.Kind() == reflect.String && vb.Kind() == reflect.String {
		return strings.Compare(va.String(), vb.String())
	}
	return strings.Compare(Text(a), Text(b))
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// compareIntegers orders two integer values exactly, without the float64
// rounding that loses precision above 2^53
func compareIntegers(a, b reflect.Value) (int, bool) {
	sa, ua := integerKind(a)
	sb, ub := integerKind(b)
	switch {
	case sa && sb:
		return cmp.Compare(a.Int(), b.Int()), true
	case ua && ub:
		return cmp.Compare(a.Uint(), b.Uint()), true
	case sa && ub:
		if a.Int() < 0 {
			return -1, true
		}
		return cmp.Compare(uint64(a.Int()), b.Uint()), true
	case ua && sb:
		if b.Int() < 0 {
			return 1, true
		}
		return cmp.Compare(a.Uint(), uint64(b.Int())), true
	}
	return 0, false
}

func integerKind(v reflect.Value) (signed, unsigned bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true, false
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return false, true
	}
	return false, false
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
