package builtin

import (
	"fmt"

	"ispetl/internal/table"
)

// FillMissing replaces every Null cell with Sentinel. A column that held at
// least one Null becomes a text column; its other cells keep their textual
// rendering.
type FillMissing struct {
	Sentinel string
}

func (FillMissing) Name() string { return "fill_missing" }

func (s FillMissing) Apply(t *table.Table) (string, error) {
	filled := 0
	for ci := range t.Columns {
		if t.NullCount(ci) == 0 {
			continue
		}
		for _, row := range t.Rows {
			if row[ci].Null {
				row[ci] = table.Text(s.Sentinel)
				filled++
				continue
			}
			if row[ci].Kind != table.KindText {
				row[ci] = table.Text(row[ci].String())
			}
		}
		t.Columns[ci].Kind = table.KindText
	}
	return fmt.Sprintf("missing values replaced with '%s' (%d cells)", s.Sentinel, filled), nil
}
