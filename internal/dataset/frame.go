package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "numeric"
	case KindTime:
		return "datetime"
	default:
		return "text"
	}
}

// Column is a named, typed series. Only the slice matching Kind is populated.
// Missing numbers are NaN and missing times are the zero time.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Times   []time.Time
	Texts   []string
}

// NumberColumn builds a numeric column.
func NumberColumn(name string, vals []float64) *Column {
	return &Column{Name: name, Kind: KindNumber, Numbers: vals}
}

// TextColumn builds a text column.
func TextColumn(name string, vals []string) *Column {
	return &Column{Name: name, Kind: KindText, Texts: vals}
}

// TimeColumn builds a datetime column.
func TimeColumn(name string, vals []time.Time) *Column {
	return &Column{Name: name, Kind: KindTime, Times: vals}
}

// Len returns the number of cells.
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumber:
		return len(c.Numbers)
	case KindTime:
		return len(c.Times)
	default:
		return len(c.Texts)
	}
}

// Cell formats cell i as text; missing cells are "".
func (c *Column) Cell(i int) string {
	switch c.Kind {
	case KindNumber:
		v := c.Numbers[i]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case KindTime:
		t := c.Times[i]
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	default:
		return c.Texts[i]
	}
}

func (c *Column) pick(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindNumber:
		out.Numbers = make([]float64, len(idx))
		for i, j := range idx {
			out.Numbers[i] = c.Numbers[j]
		}
	case KindTime:
		out.Times = make([]time.Time, len(idx))
		for i, j := range idx {
			out.Times[i] = c.Times[j]
		}
	default:
		out.Texts = make([]string, len(idx))
		for i, j := range idx {
			out.Texts[i] = c.Texts[j]
		}
	}
	return out
}

// RecordSet is an immutable column-oriented table of measurement records.
// Slices reachable through Column must not be modified by callers; every
// derived set is a fresh copy.
type RecordSet struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a record set. All columns must share a length and have unique names.
func New(cols ...*Column) (*RecordSet, error) {
	rs := &RecordSet{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := rs.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			rs.rows = c.Len()
		} else if c.Len() != rs.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), rs.rows)
		}
		rs.index[c.Name] = i
		rs.cols = append(rs.cols, c)
	}
	return rs, nil
}

// Empty returns a record set with no columns and no rows.
func Empty() *RecordSet {
	return &RecordSet{index: map[string]int{}}
}

// Len returns the row count. A nil set has zero rows.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return rs.rows
}

// Empty reports whether the set has no rows.
func (rs *RecordSet) Empty() bool { return rs.Len() == 0 }

// Columns returns column names in order.
func (rs *RecordSet) Columns() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.cols))
	for i, c := range rs.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether a column exists.
func (rs *RecordSet) Has(name string) bool {
	_, ok := rs.Column(name)
	return ok
}

// Column returns the named column.
func (rs *RecordSet) Column(name string) (*Column, bool) {
	if rs == nil {
		return nil, false
	}
	idx, ok := rs.index[name]
	if !ok {
		return nil, false
	}
	return rs.cols[idx], true
}

// Numbers returns the values of a numeric column.
func (rs *RecordSet) Numbers(name string) ([]float64, bool) {
	c, ok := rs.Column(name)
	if !ok || c.Kind != KindNumber {
		return nil, false
	}
	return c.Numbers, true
}

// Texts returns the values of a text column.
func (rs *RecordSet) Texts(name string) ([]string, bool) {
	c, ok := rs.Column(name)
	if !ok || c.Kind != KindText {
		return nil, false
	}
	return c.Texts, true
}

// Times returns the values of a datetime column.
func (rs *RecordSet) Times(name string) ([]time.Time, bool) {
	c, ok := rs.Column(name)
	if !ok || c.Kind != KindTime {
		return nil, false
	}
	return c.Times, true
}

// Select returns a copy holding the rows for which keep returns true.
func (rs *RecordSet) Select(keep func(row int) bool) *RecordSet {
	if rs == nil {
		return Empty()
	}
	idx := make([]int, 0, rs.rows)
	for i := 0; i < rs.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return rs.Pick(idx)
}

// Pick returns a copy holding the given rows in the given order.
func (rs *RecordSet) Pick(rows []int) *RecordSet {
	if rs == nil {
		return Empty()
	}
	out := &RecordSet{index: make(map[string]int, len(rs.cols)), rows: len(rows)}
	for i, c := range rs.cols {
		out.index[c.Name] = i
		out.cols = append(out.cols, c.pick(rows))
	}
	return out
}

// Copy returns a deep copy.
func (rs *RecordSet) Copy() *RecordSet {
	idx := make([]int, rs.Len())
	for i := range idx {
		idx[i] = i
	}
	return rs.Pick(idx)
}

// withConstText returns a copy of rs where name holds value on every row,
// appended as a new column or replacing an existing one in place.
func (rs *RecordSet) withConstText(name, value string) *RecordSet {
	vals := make([]string, rs.rows)
	for i := range vals {
		vals[i] = value
	}
	col := TextColumn(name, vals)
	out := &RecordSet{index: make(map[string]int, len(rs.cols)+1), rows: rs.rows}
	replaced := false
	for i, c := range rs.cols {
		if c.Name == name {
			c = col
			replaced = true
		}
		out.index[c.Name] = i
		out.cols = append(out.cols, c)
	}
	if !replaced {
		out.index[name] = len(out.cols)
		out.cols = append(out.cols, col)
	}
	return out
}

// Concat row-concatenates sets in order. Columns are the union in first-seen
// order; cells absent from a set are missing. A column whose kind differs
// between sets becomes text.
func Concat(sets ...*RecordSet) *RecordSet {
	var names []string
	kinds := map[string]Kind{}
	mixed := map[string]bool{}
	total := 0
	for _, s := range sets {
		if s == nil {
			continue
		}
		total += s.rows
		for _, c := range s.cols {
			k, seen := kinds[c.Name]
			if !seen {
				names = append(names, c.Name)
				kinds[c.Name] = c.Kind
				continue
			}
			if k != c.Kind {
				mixed[c.Name] = true
			}
		}
	}
	out := &RecordSet{index: make(map[string]int, len(names)), rows: total}
	for i, name := range names {
		kind := kinds[name]
		if mixed[name] {
			kind = KindText
		}
		col := &Column{Name: name, Kind: kind}
		for _, s := range sets {
			if s == nil {
				continue
			}
			src, ok := s.Column(name)
			appendCells(col, src, ok, s.rows)
		}
		out.index[name] = i
		out.cols = append(out.cols, col)
	}
	return out
}

func appendCells(dst, src *Column, present bool, n int) {
	switch dst.Kind {
	case KindNumber:
		if present {
			dst.Numbers = append(dst.Numbers, src.Numbers...)
			return
		}
		for i := 0; i < n; i++ {
			dst.Numbers = append(dst.Numbers, math.NaN())
		}
	case KindTime:
		if present {
			dst.Times = append(dst.Times, src.Times...)
			return
		}
		dst.Times = append(dst.Times, make([]time.Time, n)...)
	default:
		if !present {
			dst.Texts = append(dst.Texts, make([]string, n)...)
			return
		}
		if src.Kind == KindText {
			dst.Texts = append(dst.Texts, src.Texts...)
			return
		}
		for i := 0; i < n; i++ {
			dst.Texts = append(dst.Texts, src.Cell(i))
		}
	}
}
