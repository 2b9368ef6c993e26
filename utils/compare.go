package utils

import (
	"cmp"
	"strings"
	"time"
)

// Compare orders two scalar values and returns -1, 0 or 1. nil sorts first.
// Numbers compare numerically across Go types, times chronologically, bools
// false before true; anything else falls back to its string form.
func Compare(a, b any) int {
	a, b = Deref(a), Deref(b)
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
	if IsNumeric(a) && IsNumeric(b) {
		return cmp.Compare(ToFloat64(a), ToFloat64(b))
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	if IsNumeric(a) != IsNumeric(b) {
		// a numeric column compared to a numeric string
		if f, ok := ParseFloat(ToString(b)); ok && IsNumeric(a) {
			return cmp.Compare(ToFloat64(a), f)
		}
		if f, ok := ParseFloat(ToString(a)); ok && IsNumeric(b) {
			return cmp.Compare(f, ToFloat64(b))
		}
	}
	return strings.Compare(ToString(a), ToString(b))
}

// Equal reports whether Compare considers a and b the same value.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}
