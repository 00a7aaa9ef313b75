package table

import "math"

// Concat places the columns of b after the columns of a, aligning rows by
// position. The shorter table is padded with missing cells so that a row
// present on only one side survives until DropIncomplete removes it.
func Concat(a, b *Table) *Table {
	n := a.NumRows()
	if b.NumRows() > n {
		n = b.NumRows()
	}
	out := &Table{Columns: make([]Column, 0, a.NumCols()+b.NumCols())}
	for _, src := range []*Table{a, b} {
		for _, c := range src.Columns {
			out.Columns = append(out.Columns, pad(c, n))
		}
	}
	return out
}

func pad(c Column, n int) Column {
	out := c.Clone()
	for out.Len() < n {
		if out.Kind == Text {
			out.Raw = append(out.Raw, "")
		} else {
			out.Values = append(out.Values, math.NaN())
		}
	}
	return out
}

// Interpolate fills interior gaps of every numeric column by linear
// interpolation between the nearest observed neighbors in row order.
// Leading and trailing gaps have a neighbor on one side only and are left
// missing. Text columns are untouched.
func (t *Table) Interpolate() *Table {
	out := t.Clone()
	for j := range out.Columns {
		if out.Columns[j].IsNumeric() {
			interpolate(out.Columns[j].Values)
		}
	}
	return out
}

func interpolate(v []float64) {
	prev := -1
	for i, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (x - v[prev]) / float64(i-prev)
			for k := prev + 1; k < i; k++ {
				v[k] = v[prev] + step*float64(k-prev)
			}
		}
		prev = i
	}
}

// DropIncomplete removes every row that still has a missing numeric cell.
func (t *Table) DropIncomplete() *Table {
	n := t.NumRows()
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		complete := true
		for _, c := range t.Columns {
			if c.IsNumeric() && math.IsNaN(c.Values[i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return t.Rows(keep)
}

// FillEdges copies the first observed value backwards over a leading gap and
// the last observed value forwards over a trailing gap. Columns with no
// observed value stay missing.
func (t *Table) FillEdges() *Table {
	out := t.Clone()
	for j := range out.Columns {
		if !out.Columns[j].IsNumeric() {
			continue
		}
		v := out.Columns[j].Values
		first, last := -1, -1
		for i, x := range v {
			if !math.IsNaN(x) {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first < 0 {
			continue
		}
		for i := 0; i < first; i++ {
			v[i] = v[first]
		}
		for i := last + 1; i < len(v); i++ {
			v[i] = v[last]
		}
	}
	return out
}

// Rows returns a new table holding only the given row indices, in order.
func (t *Table) Rows(idx []int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for j, c := range t.Columns {
		nc := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == Text {
			nc.Raw = make([]string, len(idx))
			for k, i := range idx {
				nc.Raw[k] = c.Raw[i]
			}
		} else {
			nc.Values = make([]float64, len(idx))
			for k, i := range idx {
				nc.Values[k] = c.Values[i]
			}
		}
		out.Columns[j] = nc
	}
	return out
}

// Slice returns rows [from, to).
func (t *Table) Slice(from, to int) *Table {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return t.Rows(idx)
}
