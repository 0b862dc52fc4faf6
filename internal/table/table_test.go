package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromText_InfersKinds(t *testing.T) {
	t.Parallel()

	header := []string{"id", "idade", "bairro", "vazia"}
	rows := [][]string{
		{"1", "34", "Centro", ""},
		{"2", "", "Tijuca", "NA"},
		{"3", "45.5", "", ""},
	}
	origins := []Origin{{"a.csv", 2}, {"a.csv", 3}, {"b.csv", 2}}

	tb := FromText(header, rows, origins, nil)

	require.Len(t, tb.Columns, 4)
	assert.Equal(t, KindInteger, tb.Columns[0].Kind)
	assert.Equal(t, KindDecimal, tb.Columns[1].Kind)
	assert.Equal(t, KindText, tb.Columns[2].Kind)
	assert.Equal(t, KindDecimal, tb.Columns[3].Kind, "all-missing column")

	assert.Equal(t, Integer(2), tb.Rows[1][0])
	assert.Equal(t, Decimal(34), tb.Rows[0][1])
	assert.True(t, tb.Rows[1][1].Null)
	assert.True(t, tb.Rows[2][2].Null)
	assert.Equal(t, Origin{"b.csv", 2}, tb.Origin(2))
	assert.Equal(t, 3, tb.NullCount(3))
}

func TestFromText_CustomNA(t *testing.T) {
	t.Parallel()

	tb := FromText([]string{"x"}, [][]string{{"-"}, {""}}, nil, NewNASet([]string{"-"}))

	assert.Equal(t, KindText, tb.Columns[0].Kind)
	assert.True(t, tb.Rows[0][0].Null)
	assert.Equal(t, Text(""), tb.Rows[1][0])
}

func TestFromText_HexIsText(t *testing.T) {
	t.Parallel()

	tb := FromText([]string{"x"}, [][]string{{"0x1p-2"}}, nil, nil)
	assert.Equal(t, KindText, tb.Columns[0].Kind)
}

func TestValueString(t *testing.T) {
	t.Parallel()

	ts := time.Date(2022, 3, 15, 13, 45, 10, 0, time.UTC)

	tests := []struct {
		name string
		in   Value
		want string
	}{
		{name: "null", in: Null(KindInteger), want: ""},
		{name: "text", in: Text("Centro"), want: "Centro"},
		{name: "integer", in: Integer(45), want: "45"},
		{name: "integral decimal", in: Decimal(45), want: "45.0"},
		{name: "fractional decimal", in: Decimal(0.5), want: "0.5"},
		{name: "date drops clock", in: Date(ts), want: "2022-03-15"},
		{name: "time drops calendar", in: TimeOfDay(ts), want: "13:45:10"},
		{name: "timestamp", in: Timestamp(ts), want: "2022-03-15 13:45:10"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.in.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateAndTimeOfDayArePure(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BRT", -3*3600)
	ts := time.Date(2021, 12, 31, 23, 30, 0, 0, loc)

	d := Date(ts)
	assert.Equal(t, time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), d.Time)

	tod := TimeOfDay(ts)
	assert.Equal(t, 0, tod.Time.Year())
	assert.Equal(t, 23, tod.Time.Hour())
	assert.Equal(t, 30, tod.Time.Minute())
}

func TestAppend(t *testing.T) {
	t.Parallel()

	a := New(Column{Name: "x"}, Column{Name: "y"})
	require.NoError(t, a.AppendRow([]Value{Text("1"), Text("2")}, Origin{"a", 2}))

	b := New(Column{Name: "x"}, Column{Name: "y"})
	require.NoError(t, b.AppendRow([]Value{Text("3"), Text("4")}, Origin{"b", 2}))

	require.NoError(t, a.Append(b))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, Origin{"b", 2}, a.Origin(1))

	c := New(Column{Name: "y"}, Column{Name: "x"})
	assert.Error(t, a.Append(c))
}

func TestAppendRow_WidthMismatch(t *testing.T) {
	t.Parallel()

	a := New(Column{Name: "x"})
	assert.Error(t, a.AppendRow([]Value{Text("1"), Text("2")}, Origin{}))
}

func TestAddColumn_ReplacesExisting(t *testing.T) {
	t.Parallel()

	a := New(Column{Name: "x", Kind: KindText})
	require.NoError(t, a.AppendRow([]Value{Text("1")}, Origin{}))

	a.AddColumn(Column{Name: "y", Kind: KindInteger}, func(int) Value { return Integer(7) })
	a.AddColumn(Column{Name: "x", Kind: KindInteger}, func(int) Value { return Integer(1) })

	assert.Equal(t, []string{"x", "y"}, a.Names())
	assert.Equal(t, []Value{Integer(1), Integer(7)}, a.Rows[0])
}

func TestLookup(t *testing.T) {
	t.Parallel()

	a := New(Column{Name: "x"})
	i, err := a.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = a.Lookup("nope")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}
