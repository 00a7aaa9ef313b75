// Package codec converts tables to and from their stored byte form.
//
// The stored form is UTF-8 CSV (header row, comma separated values) passed
// through a reversible byte shift: every byte b becomes (b+1) mod 256 on the
// way in and (b-1) mod 256 on the way out. The shift only keeps casual readers
// from seeing the data in the object store. It is obfuscation, not encryption,
// and provides no confidentiality.
//
//	raw, err := codec.Encode(t)   // store raw
//	t2, err := codec.Decode(raw)  // t2 equals t
//
// Column kinds are not stored: on decode a column is numeric when every
// non-missing cell parses as a number. A text column holding only numbers
// therefore comes back numeric with the same values.
package codec

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
)

// missingMarkers are the cell spellings read as a missing numeric value.
var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

const utf8BOM = "\ufeff"

// Encode serializes t to CSV and obfuscates the bytes.
func Encode(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return Obfuscate(buf.Bytes()), nil
}

// Decode reverses Encode. Bytes that do not form valid CSV after the byte
// shift is undone yield a *errors.DecodeError.
func Decode(data []byte) (*table.Table, error) {
	return ParseCSV(bytes.NewReader(Reveal(data)))
}

// Obfuscate maps every byte b to (b+1) mod 256. The input is not modified.
func Obfuscate(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b + 1
	}
	return out
}

// Reveal maps every byte b to (b-1) mod 256. The input is not modified.
func Reveal(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b - 1
	}
	return out
}

// ParseCSV reads a header row followed by data rows. A column is numeric when
// every non-missing cell parses as a float; otherwise it is kept as text.
func ParseCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewDecodeError("codec.ParseCSV", err)
	}
	if len(records) == 0 {
		return nil, errors.NewDecodeError("codec.ParseCSV", errors.ErrEmptyData)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, dup := seen[name]; dup {
			return nil, errors.NewDecodeError("codec.ParseCSV", errors.Newf("duplicate column %q", name))
		}
		seen[name] = struct{}{}
	}
	rows := records[1:]

	t := &table.Table{Columns: make([]table.Column, len(header))}
	for j, name := range header {
		raw := make([]string, len(rows))
		for i, rec := range rows {
			raw[i] = rec[j]
		}
		t.Columns[j] = parseColumn(name, raw)
	}
	return t, nil
}

func parseColumn(name string, raw []string) table.Column {
	values := make([]float64, len(raw))
	for i, cell := range raw {
		s := strings.TrimSpace(cell)
		if _, missing := missingMarkers[s]; missing {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return table.NewTextColumn(name, raw)
		}
		values[i] = v
	}
	return table.NewNumericColumn(name, values)
}

// WriteCSV writes t as CSV. Missing numeric cells become empty fields and
// numbers use the shortest representation that parses back to the same
// float64.
func WriteCSV(w io.Writer, t *table.Table) error {
	if t == nil || t.NumCols() == 0 {
		return errors.NewValueError("codec.WriteCSV", "table has no columns")
	}
	cw := csv.NewWriter(w)
	if err := writeRecord(cw, w, t.Names()); err != nil {
		return errors.Wrap(err, "codec.WriteCSV: header")
	}

	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			record[j] = formatCell(c, i)
		}
		if err := writeRecord(cw, w, record); err != nil {
			return errors.Wrapf(err, "codec.WriteCSV: row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "codec.WriteCSV: flush")
}

// writeRecord writes a record through cw. A record made of one empty field
// would come out as a blank line, which csv.Reader skips, so it is written
// as an explicitly quoted empty field instead.
func writeRecord(cw *csv.Writer, w io.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

func formatCell(c table.Column, i int) string {
	if c.Kind == table.Text {
		return c.Raw[i]
	}
	v := c.Values[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
