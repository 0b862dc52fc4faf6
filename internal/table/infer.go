package table

import (
	"strconv"
	"strings"
)

// DefaultNAValues are the cell contents treated as missing when no explicit
// list is configured. It is the vocabulary spreadsheet exports and the
// upstream CSV tooling commonly use for "no value".
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// NASet is a lookup set of missing-value tokens.
type NASet map[string]struct{}

// NewNASet builds an NASet. A nil slice yields DefaultNAValues.
func NewNASet(tokens []string) NASet {
	if tokens == nil {
		tokens = DefaultNAValues
	}
	s := make(NASet, len(tokens))
	for _, tok := range tokens {
		s[tok] = struct{}{}
	}
	return s
}

// Has reports whether cell is a missing-value token.
func (s NASet) Has(cell string) bool {
	_, ok := s[cell]
	return ok
}

// FromText builds a typed table from raw text cells. For every column the
// narrowest kind that fits all non-missing cells is chosen: integer, then
// decimal, otherwise text. Missing cells become Null values of that kind.
func FromText(header []string, rows [][]string, origins []Origin, na NASet) *Table {
	if na == nil {
		na = NewNASet(nil)
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: name, Kind: inferKind(rows, i, na)}
	}

	t := New(cols...)
	t.Rows = make([][]Value, len(rows))
	t.Origins = make([]Origin, len(rows))
	for r, raw := range rows {
		vals := make([]Value, len(cols))
		for i, c := range cols {
			cell := ""
			if i < len(raw) {
				cell = raw[i]
			}
			vals[i] = parseCell(cell, c.Kind, na)
		}
		t.Rows[r] = vals
		if r < len(origins) {
			t.Origins[r] = origins[r]
		}
	}
	return t
}

func inferKind(rows [][]string, col int, na NASet) Kind {
	kind := KindInteger
	seen := false
	for _, raw := range rows {
		if col >= len(raw) || na.Has(raw[col]) {
			continue
		}
		seen = true
		cell := strings.TrimSpace(raw[col])
		switch kind {
		case KindInteger:
			if _, ok := parseInt(cell); ok {
				continue
			}
			if _, ok := parseFloat(cell); ok {
				kind = KindDecimal
				continue
			}
			return KindText
		case KindDecimal:
			if _, ok := parseFloat(cell); !ok {
				return KindText
			}
		}
	}
	if !seen {
		// An all-missing column has no evidence of being numeric.
		return KindDecimal
	}
	return kind
}

func parseCell(cell string, k Kind, na NASet) Value {
	if na.Has(cell) {
		return Null(k)
	}
	switch k {
	case KindInteger:
		if i, ok := parseInt(strings.TrimSpace(cell)); ok {
			return Integer(i)
		}
	case KindDecimal:
		if f, ok := parseFloat(strings.TrimSpace(cell)); ok {
			return Decimal(f)
		}
	}
	return Text(cell)
}

func parseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}

func parseFloat(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
