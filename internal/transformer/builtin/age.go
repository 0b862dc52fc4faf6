package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"ispetl/internal/table"
)

// NormalizeAge renders Column as text and drops the ".0" a float rendering
// leaves on whole numbers. Only numeric renderings are rewritten.
type NormalizeAge struct {
	Column   string
	Sentinel string
}

func (NormalizeAge) Name() string { return "normalize_idade" }

func (s NormalizeAge) Apply(t *table.Table) (string, error) {
	ci, err := t.Lookup(s.Column)
	if err != nil {
		return "", err
	}
	for _, row := range t.Rows {
		row[ci] = table.Text(s.render(row[ci]))
	}
	t.Columns[ci].Kind = table.KindText
	return fmt.Sprintf("column '%s' converted to text", s.Column), nil
}

func (s NormalizeAge) render(v table.Value) string {
	switch {
	case v.Null:
		return s.Sentinel
	case v.Kind == table.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case v.Kind == table.KindDecimal:
		return strings.TrimSuffix(table.FormatDecimal(v.Float), ".0")
	case v.Kind == table.KindText:
		return stripWholeSuffix(v.Str)
	default:
		return v.String()
	}
}

// stripWholeSuffix removes a trailing ".0" from s when s is a number with a
// digit before the point.
func stripWholeSuffix(s string) string {
	trimmed := strings.TrimSuffix(s, ".0")
	if trimmed == s || trimmed == "" || !unicode.IsDigit(rune(trimmed[len(trimmed)-1])) {
		return s
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return s
	}
	return trimmed
}
