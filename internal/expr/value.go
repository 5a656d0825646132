package expr

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aidanlsb/magpie/internal/dates"
)

// toNumber attempts to coerce a value to a float64.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		n = strings.TrimSpace(n)
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Stringify renders a value the way it appears in exported output:
// nil is empty, numbers drop a trailing ".0", dates use canonical layouts,
// lists are comma-joined.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(dates.DateLayout)
		}
		return t.Format(dates.DatetimeSecondsLayout)
	case []string:
		return strings.Join(t, ", ")
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// Truthy reports whether a value counts as true in a filter:
// non-nil, non-false, non-zero, non-empty.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case time.Time:
		return !t.IsZero()
	default:
		if n, ok := toNumber(v); ok {
			return n != 0
		}
		return true
	}
}

type cmpKind int

const (
	cmpNil cmpKind = iota
	cmpNumber
	cmpTemporal
	cmpString
)

type cmpVal struct {
	kind cmpKind
	num  float64
	t    time.Time
	s    string
}

func normalizeForCompare(v interface{}) cmpVal {
	if v == nil {
		return cmpVal{kind: cmpNil}
	}

	// Real time values compare temporally.
	if t, ok := v.(time.Time); ok {
		return cmpVal{kind: cmpTemporal, t: t}
	}

	// Strings that look like dates compare temporally so frontmatter
	// strings and coerced date values order consistently.
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if dates.IsValidDatetime(s) {
			if t, err := dates.ParseDatetime(s); err == nil {
				return cmpVal{kind: cmpTemporal, t: t, s: s}
			}
		}
		if dates.IsValidDate(s) {
			if t, err := dates.ParseDate(s); err == nil {
				return cmpVal{kind: cmpTemporal, t: t, s: s}
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return cmpVal{kind: cmpNumber, num: n, s: s}
		}
		return cmpVal{kind: cmpString, s: s}
	}

	if n, ok := toNumber(v); ok {
		return cmpVal{kind: cmpNumber, num: n}
	}

	// Fallback: stringify
	return cmpVal{kind: cmpString, s: Stringify(v)}
}

// Compare orders two values: -1, 0 or 1. Numbers compare numerically,
// dates temporally, everything else as strings. Nil sorts before any
// non-nil value; callers that need nils last handle that themselves.
func Compare(a, b interface{}) int {
	av := normalizeForCompare(a)
	bv := normalizeForCompare(b)

	if av.kind == cmpNil && bv.kind == cmpNil {
		return 0
	}
	if av.kind == cmpNil {
		return -1
	}
	if bv.kind == cmpNil {
		return 1
	}

	if av.kind == cmpNumber && bv.kind == cmpNumber {
		switch {
		case av.num < bv.num:
			return -1
		case av.num > bv.num:
			return 1
		default:
			return 0
		}
	}

	if av.kind == cmpTemporal && bv.kind == cmpTemporal {
		switch {
		case av.t.Before(bv.t):
			return -1
		case av.t.After(bv.t):
			return 1
		default:
			return 0
		}
	}

	// Mixed types: compare the string forms.
	as, bs := av.s, bv.s
	if as == "" {
		as = Stringify(a)
	}
	if bs == "" {
		bs = Stringify(b)
	}
	return strings.Compare(as, bs)
}

// Equals reports whether two values are equal under Compare semantics,
// with nil equal only to nil.
func Equals(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Compare(a, b) == 0
}
