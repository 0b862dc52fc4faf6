package builtin

import (
	"fmt"

	"ispetl/internal/table"
)

// DeriveYearMonth adds the year (4-digit text) and the pt-BR month name of
// the date in Source.
type DeriveYearMonth struct {
	Source  string
	Year    string
	Month   string
	Layouts []string
}

func (DeriveYearMonth) Name() string { return "derive_year_month" }

func (s DeriveYearMonth) Apply(t *table.Table) (string, error) {
	ci, err := t.Lookup(s.Source)
	if err != nil {
		return "", err
	}
	years := make([]table.Value, t.Len())
	months := make([]table.Value, t.Len())
	for r, row := range t.Rows {
		d, err := parseDateValue(row[ci], s.Layouts)
		if err != nil {
			return "", parseError(t, s.Source, r, row[ci], err)
		}
		years[r] = table.Text(fmt.Sprintf("%04d", d.Year()))
		months[r] = table.Text(MonthName(d.Month()))
	}

	t.AddColumn(table.Column{Name: s.Year, Kind: table.KindText}, func(r int) table.Value { return years[r] })
	t.AddColumn(table.Column{Name: s.Month, Kind: table.KindText}, func(r int) table.Value { return months[r] })
	return fmt.Sprintf("columns '%s' and '%s' added", s.Year, s.Month), nil
}
