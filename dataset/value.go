package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// VALUE — Typed scalar cell
// ============================================================================
// Every cell holds exactly one scalar: null, number, text, bool, or time.
// Nested containers never reach a cell — FromAny collapses them on the way in
// (first element for lists, stringified for anything else).
// ============================================================================

// Kind identifies the scalar type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindBool
	KindTime
)

// String returns the kind name used in logs and trace output.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is one immutable cell scalar.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	t    time.Time
}

// Null returns the missing-value scalar.
func Null() Value { return Value{kind: KindNull} }

// Number wraps a float as a cell value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a string as a cell value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Boolean wraps a bool as a cell value.
func Boolean(v bool) Value { return Value{kind: KindBool, b: v} }

// Time wraps a timestamp as a cell value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// FromAny converts an arbitrary decoded value (JSON payloads, XLSX cells)
// into a scalar Value. Lists collapse to their first element; maps and any
// other non-scalar are stringified. This enforces the one-scalar-per-cell
// invariant at every entry point.
func FromAny(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return Text(x)
	case bool:
		return Boolean(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case time.Time:
		return Time(x)
	case []interface{}:
		if len(x) == 0 {
			return Null()
		}
		return FromAny(x[0])
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Number(f)
		}
		return Text(x.String())
	default:
		return Text(fmt.Sprintf("%v", x))
	}
}

// Kind reports the scalar type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is missing. Empty text counts as present.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float coerces the value to a number. Text is parsed after stripping
// spaces and thousands separators; bools count as 1/0; unparseable text,
// times, and nulls are not coercible.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindText:
		s := strings.TrimSpace(v.str)
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Time returns the timestamp for time-kind values.
func (v Value) Time() (time.Time, bool) {
	if v.kind == KindTime {
		return v.t, true
	}
	return time.Time{}, false
}

// Bool returns the boolean for bool-kind values.
func (v Value) Bool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// String renders the value for display, joins, and text operations.
// Nulls render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatFloat(v.num)
	case KindText:
		return v.str
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindTime:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Equal compares two values by kind and content. Used for duplicate
// detection and exact lookups.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Interface returns the underlying scalar as a plain Go value for JSON
// result bundles. Nulls become nil.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.str
	case KindBool:
		return v.b
	case KindTime:
		return v.String()
	default:
		return nil
	}
}

// MarshalJSON emits the plain scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// formatFloat renders a number without a trailing ".0" for whole values.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
