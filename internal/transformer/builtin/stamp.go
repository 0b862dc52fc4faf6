package builtin

import (
	"fmt"
	"time"

	"ispetl/internal/table"
)

// StampRefreshDate adds Column holding the run date, identical on every row.
type StampRefreshDate struct {
	Column   string
	Clock    func() time.Time
	Location *time.Location
}

func (StampRefreshDate) Name() string { return "stamp_refresh_date" }

func (s StampRefreshDate) Apply(t *table.Table) (string, error) {
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}
	at := now()
	if s.Location != nil {
		at = at.In(s.Location)
	}
	v := table.Date(at)
	t.AddColumn(table.Column{Name: s.Column, Kind: table.KindDate}, func(int) table.Value { return v })
	return fmt.Sprintf("column '%s' added", s.Column), nil
}
