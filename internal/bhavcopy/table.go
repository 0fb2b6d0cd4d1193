// Package bhavcopy extracts, cleans and compares NSE bhavcopy tables.
package bhavcopy

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a single cell
type Kind int

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

// Value is one cell of a Table
type Value struct {
	Kind Kind
	Text string
	Num  float64
}

// Missing reports whether the cell has no value
func (v Value) Missing() bool { return v.Kind == KindMissing }

// String returns the text form of the cell, "" when missing
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Interface returns the cell as a JSON friendly value. Missing cells become "".
func (v Value) Interface() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Num
	default:
		return ""
	}
}

func textValue(s string) Value {
	if s == "" {
		return Value{Kind: KindMissing}
	}
	return Value{Kind: KindText, Text: s}
}

func numberValue(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// parseNumber parses a CSV cell as a finite number, tolerating surrounding
// spaces. NaN and infinities count as missing.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Table is an ordered, immutable set of rows with named columns.
// Transforms always return a new Table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable builds a table from columns and rows. Short rows are padded with missing cells.
func NewTable(columns []string, rows [][]Value) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]Value, 0, len(rows)),
	}
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for _, r := range rows {
		row := make([]Value, len(columns))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t
}

// Columns returns the column names in file order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table is nil or has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Row is a read-only view of one table row
type Row struct {
	t *Table
	i int
}

// Row returns the i-th row
func (t *Table) Row(i int) Row {
	return Row{t: t, i: i}
}

// Get returns the cell in column name, or a missing value if the column is absent
func (r Row) Get(name string) Value {
	idx, ok := r.t.index[name]
	if !ok {
		return Value{}
	}
	return r.t.rows[r.i][idx]
}

// Text returns the text form of the cell in column name
func (r Row) Text(name string) string {
	return r.Get(name).String()
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{columns: t.columns, index: t.index}
	for i := range t.rows {
		if keep(t.Row(i)) {
			out.rows = append(out.rows, t.rows[i])
		}
	}
	return out
}

// Head returns a new table with at most n rows
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{columns: t.columns, index: t.index, rows: t.rows[:n:n]}
}

// ConcatDistinct returns the rows of t followed by the rows of other that are not
// already present in t, comparing whole rows. Both tables must share columns.
func (t *Table) ConcatDistinct(other *Table) *Table {
	out := &Table{columns: t.columns, index: t.index}
	seen := make(map[string]struct{}, len(t.rows)+len(other.rows))
	add := func(row []Value) {
		key := rowKey(row)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out.rows = append(out.rows, row)
	}
	for _, row := range t.rows {
		add(row)
	}
	for _, row := range other.rows {
		add(row)
	}
	return out
}

func rowKey(row []Value) string {
	var sb strings.Builder
	for _, v := range row {
		sb.WriteString(strconv.Itoa(int(v.Kind)))
		sb.WriteByte(':')
		sb.WriteString(v.String())
		sb.WriteByte(0)
	}
	return sb.String()
}

// Records converts the table into one map per row keyed by column name
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make(map[string]any, len(t.columns))
		for i, c := range t.columns {
			rec[c] = row[i].Interface()
		}
		out = append(out, rec)
	}
	return out
}

// Project converts the table into records holding only the mapped columns
// that exist, keyed by their new names
func (t *Table) Project(mapping []ColumnAlias) []map[string]any {
	out := make([]map[string]any, 0, len(t.rows))
	for i := range t.rows {
		row := t.Row(i)
		rec := make(map[string]any, len(mapping))
		for _, m := range mapping {
			if t.HasColumn(m.Column) {
				rec[m.As] = row.Get(m.Column).Interface()
			}
		}
		out = append(out, rec)
	}
	return out
}

// ColumnAlias renames a column in Project
type ColumnAlias struct {
	Column string
	As     string
}

// UniqueText returns the distinct text values of a column in first-seen order
func (t *Table) UniqueText(name string) []string {
	out := []string{}
	if !t.HasColumn(name) {
		return out
	}
	seen := make(map[string]struct{})
	for i := range t.rows {
		v := t.Row(i).Get(name)
		if v.Missing() {
			continue
		}
		s := v.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
