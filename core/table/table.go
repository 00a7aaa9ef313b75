// Package table holds the in-memory tabular dataset every pipeline stage works on.
//
// A Table is an ordered list of named columns sharing one row count. Row
// order is significant: it is the time order of the series. Numeric columns
// store float64 with math.NaN() marking a missing cell; a column whose cells
// do not all parse as numbers is kept as text so validation can report it.
package table

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/pkg/errors"
)

// Kind distinguishes numeric columns from text columns.
type Kind int

const (
	// Numeric columns hold float64 values, NaN for missing.
	Numeric Kind = iota
	// Text columns hold the raw cell strings.
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "numeric"
}

// Column is one named column of a Table.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64 // set when Kind == Numeric
	Raw    []string  // set when Kind == Text
}

// NewNumericColumn creates a numeric column. values is not copied.
func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Values: values}
}

// NewTextColumn creates a text column. raw is not copied.
func NewTextColumn(name string, raw []string) Column {
	return Column{Name: name, Kind: Text, Raw: raw}
}

// Len returns the number of cells.
func (c Column) Len() int {
	if c.Kind == Text {
		return len(c.Raw)
	}
	return len(c.Values)
}

// IsNumeric reports whether the column holds numbers.
func (c Column) IsNumeric() bool { return c.Kind == Numeric }

// Missing reports whether cell i is missing. Text cells are missing when empty.
func (c Column) Missing(i int) bool {
	if c.Kind == Text {
		return c.Raw[i] == ""
	}
	return math.IsNaN(c.Values[i])
}

// Clone returns a deep copy.
func (c Column) Clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Values != nil {
		out.Values = append([]float64(nil), c.Values...)
	}
	if c.Raw != nil {
		out.Raw = append([]string(nil), c.Raw...)
	}
	return out
}

// Table is an ordered set of equal-length columns.
type Table struct {
	Columns []Column
}

// New builds a Table, checking that all columns have the same length.
func New(columns ...Column) (*Table, error) {
	t := &Table{Columns: columns}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) check() error {
	if len(t.Columns) == 0 {
		return nil
	}
	n := t.Columns[0].Len()
	for _, c := range t.Columns[1:] {
		if c.Len() != n {
			return errors.NewDimensionError("table.New("+c.Name+")", n, c.Len(), 0)
		}
	}
	return nil
}

// NumRows returns the shared row count.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// Split separates the named target column from the remaining feature columns.
func (t *Table) Split(target string) (X, y *Table, err error) {
	i := t.Index(target)
	if i < 0 {
		return nil, nil, errors.NewValueError("Table.Split", "column '"+target+"' not found")
	}
	X = &Table{}
	for j, c := range t.Columns {
		if j != i {
			X.Columns = append(X.Columns, c.Clone())
		}
	}
	y = &Table{Columns: []Column{t.Columns[i].Clone()}}
	return X, y, nil
}

// Select returns the named columns in the requested order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{Columns: make([]Column, 0, len(names))}
	var missing []string
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Columns = append(out.Columns, c)
	}
	if len(missing) > 0 {
		return nil, errors.NewValidationError("Table.Select", errors.Violation{
			Rule:    errors.RuleMissingColumns,
			Message: "missing columns: " + quoteList(missing),
			Columns: missing,
		})
	}
	return out, nil
}

// Append adds a column, which must match the row count.
func (t *Table) Append(c Column) error {
	if len(t.Columns) > 0 && c.Len() != t.NumRows() {
		return errors.NewDimensionError("Table.Append("+c.Name+")", t.NumRows(), c.Len(), 0)
	}
	t.Columns = append(t.Columns, c)
	return nil
}

// TextColumns returns the names of the non-numeric columns.
func (t *Table) TextColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if !c.IsNumeric() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Matrix returns the numeric columns as an n×p dense matrix.
// Text columns are rejected.
func (t *Table) Matrix() (*mat.Dense, error) {
	r, c := t.NumRows(), t.NumCols()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Table.Matrix", "empty table", errors.ErrEmptyData)
	}
	if text := t.TextColumns(); len(text) > 0 {
		return nil, errors.NewValueError("Table.Matrix", "non-numeric columns: "+quoteList(text))
	}
	m := mat.NewDense(r, c, nil)
	for j, col := range t.Columns {
		m.SetCol(j, col.Values)
	}
	return m, nil
}

// FromMatrix builds a numeric Table from m using names for the columns.
func FromMatrix(m mat.Matrix, names []string) (*Table, error) {
	r, c := m.Dims()
	if len(names) != c {
		return nil, errors.NewDimensionError("table.FromMatrix", c, len(names), 1)
	}
	out := &Table{Columns: make([]Column, c)}
	for j := 0; j < c; j++ {
		vals := make([]float64, r)
		for i := 0; i < r; i++ {
			vals[i] = m.At(i, j)
		}
		out.Columns[j] = NewNumericColumn(names[j], vals)
	}
	return out, nil
}

func quoteList(names []string) string {
	s := "["
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += "'" + n + "'"
	}
	return s + "]"
}
