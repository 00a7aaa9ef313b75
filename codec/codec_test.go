package codec

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
)

func assertTablesEqual(t *testing.T, want, got *table.Table) {
	t.Helper()
	require.Equal(t, want.Names(), got.Names())
	require.Equal(t, want.NumRows(), got.NumRows())
	for j, wc := range want.Columns {
		gc := got.Columns[j]
		require.Equal(t, wc.Kind, gc.Kind, "column %s kind", wc.Name)
		if wc.Kind == table.Text {
			assert.Equal(t, wc.Raw, gc.Raw, "column %s", wc.Name)
			continue
		}
		for i := range wc.Values {
			if math.IsNaN(wc.Values[i]) {
				assert.True(t, math.IsNaN(gc.Values[i]), "column %s row %d", wc.Name, i)
				continue
			}
			assert.Equal(t, wc.Values[i], gc.Values[i], "column %s row %d", wc.Name, i)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tbl  *table.Table
	}{
		{
			name: "numeric with awkward floats",
			tbl: &table.Table{Columns: []table.Column{
				table.NewNumericColumn("a", []float64{0.1, 1.0 / 3.0, -2.5e-300, 1e21, 0}),
				table.NewNumericColumn("b", []float64{1, 2, 3, 4, 5}),
			}},
		},
		{
			name: "missing cells",
			tbl: &table.Table{Columns: []table.Column{
				table.NewNumericColumn("x", []float64{math.NaN(), 2, math.NaN()}),
				table.NewNumericColumn("y", []float64{1, math.NaN(), 3}),
			}},
		},
		{
			name: "text column and quoted names",
			tbl: &table.Table{Columns: []table.Column{
				table.NewTextColumn("city, state", []string{"Recife", "São Paulo", "x\"y"}),
				table.NewNumericColumn("temp", []float64{30.5, 21, 18}),
			}},
		},
		{
			name: "single column with missing cells",
			tbl: &table.Table{Columns: []table.Column{
				table.NewNumericColumn("y", []float64{1, math.NaN(), 3, 4, math.NaN()}),
			}},
		},
		{
			name: "single text column with empty cell",
			tbl: &table.Table{Columns: []table.Column{
				table.NewTextColumn("note", []string{"a", "", "c"}),
			}},
		},
		{
			name: "header only",
			tbl: &table.Table{Columns: []table.Column{
				table.NewNumericColumn("a", []float64{}),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.tbl)
			require.NoError(t, err)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assertTablesEqual(t, tt.tbl, decoded)
		})
	}
}

func TestEncode_IsShiftedCSV(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{table.NewNumericColumn("a", []float64{1})}}

	encoded, err := Encode(tbl)
	require.NoError(t, err)

	// "a\n1\n" shifted by one
	assert.Equal(t, []byte{'a' + 1, '\n' + 1, '1' + 1, '\n' + 1}, encoded)
	assert.Equal(t, "a\n1\n", string(Reveal(encoded)))
}

func TestWriteCSV_SingleColumnMissingCell(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		table.NewNumericColumn("y", []float64{1, math.NaN(), 3, 4}),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.Equal(t, "y\n1\n\"\"\n3\n4\n", buf.String())

	got, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, 4, got.NumRows())
	assert.Equal(t, 1.0, got.Columns[0].Values[0])
	assert.True(t, math.IsNaN(got.Columns[0].Values[1]))
	assert.Equal(t, []float64{3, 4}, got.Columns[0].Values[2:])
}

func TestDecode_InfersColumnKind(t *testing.T) {
	// kinds are not stored, so an all-numeric text column decodes as numeric
	tbl := &table.Table{Columns: []table.Column{
		table.NewTextColumn("id", []string{"1", "2"}),
	}}

	encoded, err := Encode(tbl)
	require.NoError(t, err)
	decoded, err := Decode(encoded)
	require.NoError(t, err)

	require.True(t, decoded.Columns[0].IsNumeric())
	assert.Equal(t, []float64{1, 2}, decoded.Columns[0].Values)
}

func TestObfuscate_WrapsAround(t *testing.T) {
	in := []byte{0, 1, 254, 255}

	out := Obfuscate(in)
	assert.Equal(t, []byte{1, 2, 255, 0}, out)
	assert.Equal(t, in, Reveal(out))
	// inputs are not modified
	assert.Equal(t, []byte{0, 1, 254, 255}, in)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"ragged rows", "a,b\n1,2\n3\n"},
		{"bare quote", "a,b\n1,\"2\n"},
		{"duplicate header", "a,b,a\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(Obfuscate([]byte(tt.raw)))
			require.Error(t, err)

			var decodeErr *errors.DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}

func TestParseCSV_ColumnKinds(t *testing.T) {
	raw := "\ufeffa,label,b\n1,x,NA\n2,,4\n,z,nan\n"

	tbl, err := ParseCSV(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "label", "b"}, tbl.Names())

	a := tbl.Columns[0]
	assert.True(t, a.IsNumeric())
	assert.Equal(t, 1.0, a.Values[0])
	assert.True(t, math.IsNaN(a.Values[2]))

	label := tbl.Columns[1]
	assert.Equal(t, table.Text, label.Kind)
	assert.Equal(t, []string{"x", "", "z"}, label.Raw)

	b := tbl.Columns[2]
	assert.True(t, b.IsNumeric())
	assert.True(t, math.IsNaN(b.Values[0]))
	assert.Equal(t, 4.0, b.Values[1])
}

func TestWriteCSV_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCSV(&buf, &table.Table{}))
}
