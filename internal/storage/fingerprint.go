package storage

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"ispetl/internal/table"
)

// Fingerprint hashes a table's columns and every rendered cell with xxh3.
// Two loads of the same normalized snapshot share a fingerprint.
func Fingerprint(t *table.Table) string {
	h := xxh3.New()
	for _, c := range t.Columns {
		_, _ = h.WriteString(c.Name)
		_, _ = h.WriteString("\x1f")
		_, _ = h.WriteString(c.Kind.String())
		_, _ = h.WriteString("\x1e")
	}
	for _, row := range t.Rows {
		for _, v := range row {
			if v.Null {
				_, _ = h.WriteString("\x00")
			} else {
				_, _ = h.WriteString(v.String())
			}
			_, _ = h.WriteString("\x1f")
		}
		_, _ = h.WriteString("\x1e")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
