// Package table holds the in-memory record table that flows from the
// extractor, through the normalizer, into the loader.
//
// A Table is column-ordered: Columns fixes the order and kind of every
// column, and each row in Rows holds exactly len(Columns) values. Origins
// runs parallel to Rows and remembers where every row came from so that
// fatal normalization errors can point at a source line.
package table

import (
	"errors"
	"fmt"
)

// ErrColumnNotFound is returned (wrapped) when a named column is absent.
var ErrColumnNotFound = errors.New("column not found")

// Column describes a named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Origin identifies the source and 1-based physical line of a row.
type Origin struct {
	Source string
	Line   int
}

func (o Origin) String() string {
	if o.Source == "" {
		return fmt.Sprintf("line %d", o.Line)
	}
	return fmt.Sprintf("%s:%d", o.Source, o.Line)
}

// Table is the record table.
type Table struct {
	Columns []Column
	Rows    [][]Value
	Origins []Origin
}

// New returns an empty table with the given columns.
func New(columns ...Column) *Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Lookup is like Index but returns a wrapped ErrColumnNotFound.
func (t *Table) Lookup(name string) (int, error) {
	if i := t.Index(name); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// AppendRow appends one row. The row must have one value per column.
func (t *Table) AppendRow(vals []Value, o Origin) error {
	if len(vals) != len(t.Columns) {
		return fmt.Errorf("table: row from %s has %d values, want %d", o, len(vals), len(t.Columns))
	}
	t.Rows = append(t.Rows, vals)
	t.Origins = append(t.Origins, o)
	return nil
}

// AddColumn appends a column, computing each row's value with fn. If a
// column with the same name exists it is replaced in place instead.
func (t *Table) AddColumn(c Column, fn func(row int) Value) {
	if i := t.Index(c.Name); i >= 0 {
		t.Columns[i] = c
		for r := range t.Rows {
			t.Rows[r][i] = fn(r)
		}
		return
	}
	t.Columns = append(t.Columns, c)
	for r := range t.Rows {
		t.Rows[r] = append(t.Rows[r], fn(r))
	}
}

// Origin returns the origin of row r, or a zero Origin when unknown.
func (t *Table) Origin(r int) Origin {
	if r >= 0 && r < len(t.Origins) {
		return t.Origins[r]
	}
	return Origin{}
}

// Append concatenates other below t. Both tables must have the same column
// names in the same order; kinds are taken from t.
func (t *Table) Append(other *Table) error {
	if len(other.Columns) != len(t.Columns) {
		return fmt.Errorf("table: cannot append %d columns to %d", len(other.Columns), len(t.Columns))
	}
	for i, c := range other.Columns {
		if c.Name != t.Columns[i].Name {
			return fmt.Errorf("table: column %d is %q, want %q", i, c.Name, t.Columns[i].Name)
		}
	}
	for r, row := range other.Rows {
		t.Rows = append(t.Rows, row)
		t.Origins = append(t.Origins, other.Origin(r))
	}
	return nil
}

// NullCount returns the number of Null cells in column i.
func (t *Table) NullCount(i int) int {
	n := 0
	for _, row := range t.Rows {
		if row[i].Null {
			n++
		}
	}
	return n
}
