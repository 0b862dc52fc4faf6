package builtin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ispetl/internal/table"
	"ispetl/internal/transformer"
)

// parseDateValue interprets v as a calendar date (optionally with a time of
// day), trying layouts in order for text cells.
func parseDateValue(v table.Value, layouts []string) (time.Time, error) {
	if v.Null {
		return time.Time{}, transformer.ErrMissingValue
	}
	switch v.Kind {
	case table.KindDate, table.KindTimestamp:
		return v.Time, nil
	case table.KindText:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return time.Time{}, transformer.ErrMissingValue
		}
		var firstErr error
		for _, layout := range layouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				return t, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		if firstErr == nil {
			firstErr = errors.New("no date layouts configured")
		}
		return time.Time{}, firstErr
	default:
		return time.Time{}, fmt.Errorf("%s value is not a date", v.Kind)
	}
}

func parseError(t *table.Table, col string, row int, v table.Value, err error) error {
	return &transformer.ParseError{
		Column: col,
		Row:    row,
		Origin: t.Origin(row),
		Value:  v.String(),
		Err:    err,
	}
}

// NormalizeDate reduces a date or date-time column to its calendar date.
type NormalizeDate struct {
	Column  string
	Layouts []string
}

func (s NormalizeDate) Name() string { return "normalize_" + s.Column }

func (s NormalizeDate) Apply(t *table.Table) (string, error) {
	ci, err := t.Lookup(s.Column)
	if err != nil {
		return "", err
	}
	out := make([]table.Value, t.Len())
	for r, row := range t.Rows {
		d, err := parseDateValue(row[ci], s.Layouts)
		if err != nil {
			return "", parseError(t, s.Column, r, row[ci], err)
		}
		out[r] = table.Date(d)
	}
	for r := range t.Rows {
		t.Rows[r][ci] = out[r]
	}
	t.Columns[ci].Kind = table.KindDate
	return fmt.Sprintf("column '%s' converted to date", s.Column), nil
}

// NormalizeTime parses a column strictly with Layout and keeps only the time
// of day.
type NormalizeTime struct {
	Column string
	Layout string
}

func (s NormalizeTime) Name() string { return "normalize_" + s.Column }

func (s NormalizeTime) Apply(t *table.Table) (string, error) {
	ci, err := t.Lookup(s.Column)
	if err != nil {
		return "", err
	}
	out := make([]table.Value, t.Len())
	for r, row := range t.Rows {
		v := row[ci]
		switch {
		case v.Null:
			return "", parseError(t, s.Column, r, v, transformer.ErrMissingValue)
		case v.Kind == table.KindTime:
			out[r] = v
		case v.Kind == table.KindText:
			tm, err := parseStrict(s.Layout, strings.TrimSpace(v.Str))
			if err != nil {
				return "", parseError(t, s.Column, r, v, err)
			}
			out[r] = table.TimeOfDay(tm)
		default:
			return "", parseError(t, s.Column, r, v, fmt.Errorf("%s value is not a time", v.Kind))
		}
	}
	for r := range t.Rows {
		t.Rows[r][ci] = out[r]
	}
	t.Columns[ci].Kind = table.KindTime
	return fmt.Sprintf("column '%s' converted to time", s.Column), nil
}

// parseStrict parses str with layout and rejects anything time.Parse lets
// through beyond the layout itself, such as fractional seconds after "05".
// A single-digit leading hour is still accepted.
func parseStrict(layout, str string) (time.Time, error) {
	tm, err := time.Parse(layout, str)
	if err != nil {
		return time.Time{}, err
	}
	if f := tm.Format(layout); f != str && f != "0"+str {
		return time.Time{}, fmt.Errorf("%q does not match layout %q exactly", str, layout)
	}
	return tm, nil
}
