package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDecimal
	KindDate
	KindTime
	KindTimestamp
)

var kindNames = [...]string{
	KindText:      "text",
	KindInteger:   "integer",
	KindDecimal:   "decimal",
	KindDate:      "date",
	KindTime:      "time",
	KindTimestamp: "timestamp",
}

// String returns the logical type name used by the DDL type mappers
// ("text", "integer", "decimal", "date", "time", "timestamp").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "text"
	}
	return kindNames[k]
}

// Value is a single, explicitly nullable cell. Only the field matching Kind
// is meaningful; a Null value carries its column kind but no payload.
type Value struct {
	Kind  Kind
	Null  bool
	Str   string
	Int   int64
	Float float64
	Time  time.Time
}

// Null returns an absent value of the given kind.
func Null(k Kind) Value { return Value{Kind: k, Null: true} }

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Integer returns an integer value.
func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }

// Decimal returns a decimal value.
func Decimal(f float64) Value { return Value{Kind: KindDecimal, Float: f} }

// Date returns a pure calendar date; the time of day and zone of t are
// discarded and the result is anchored at UTC midnight.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// TimeOfDay returns a pure time-of-day value; the calendar part of t is
// discarded (anchored at 0000-01-01 UTC).
func TimeOfDay(t time.Time) Value {
	h, mi, s := t.Clock()
	return Value{Kind: KindTime, Time: time.Date(0, 1, 1, h, mi, s, t.Nanosecond(), time.UTC)}
}

// Timestamp returns a date-time value.
func Timestamp(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t} }

// String renders the value as text. Null renders as the empty string.
// Decimals keep a ".0" suffix when integral ("34.0"), matching how the
// extracts' numeric columns print once a missing cell forces a float column.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindDecimal:
		return FormatDecimal(v.Float)
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindTime:
		return v.Time.Format("15:04:05")
	case KindTimestamp:
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return v.Str
	}
}

// FormatDecimal renders f in its shortest exact form, appending ".0" to
// integral values.
func FormatDecimal(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
