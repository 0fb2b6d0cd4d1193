package bhavcopy

import (
	"fmt"
	"strings"
)

// CleanRules describes how a raw table is validated and normalised
type CleanRules struct {
	// Required columns; a missing one fails validation
	Required []string
	// FilterColumn and Allowed keep only rows whose text value is allowed
	FilterColumn string
	Allowed      []string
	// Numeric columns are coerced to numbers; failures become missing
	Numeric []string
	// Essential columns must hold a value, otherwise the row is dropped
	Essential []string
	// Upper columns are trimmed and upper-cased, Trim columns only trimmed
	Upper []string
	Trim  []string
}

// EquityRules clean the cash market bhavcopy
var EquityRules = CleanRules{
	Required:     []string{"TradDt", "SctySrs", "FinInstrmNm", "ClsPric", "TckrSymb", "TtlTradgVol"},
	FilterColumn: "SctySrs",
	Allowed:      []string{"EQ", "BE"},
	Numeric:      []string{"ClsPric", "TtlTradgVol"},
	Essential:    []string{"ClsPric", "TtlTradgVol"},
}

// DerivativeRules clean the F&O bhavcopy
var DerivativeRules = CleanRules{
	Upper: []string{"FinInstrmTp"},
	Trim:  []string{"TckrSymb"},
}

// Clean validates t against rules and returns a new cleaned table.
// Clean is idempotent.
func Clean(t *Table, rules CleanRules) (*Table, error) {
	for _, col := range rules.Required {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w: missing required column %s", ErrValidation, col)
		}
	}

	out := t
	if rules.FilterColumn != "" && t.HasColumn(rules.FilterColumn) {
		allowed := make(map[string]struct{}, len(rules.Allowed))
		for _, a := range rules.Allowed {
			allowed[a] = struct{}{}
		}
		out = out.Filter(func(r Row) bool {
			v := r.Get(rules.FilterColumn)
			if v.Missing() {
				return false
			}
			_, ok := allowed[v.String()]
			return ok
		})
	}

	out = out.mapColumns(rules.Numeric, func(v Value) Value {
		switch v.Kind {
		case KindNumber, KindMissing:
			return v
		}
		if f, ok := parseNumber(v.Text); ok {
			return numberValue(f)
		}
		return Value{}
	})
	out = out.mapColumns(rules.Upper, func(v Value) Value {
		if v.Kind != KindText {
			return v
		}
		return textValue(strings.ToUpper(strings.TrimSpace(v.Text)))
	})
	out = out.mapColumns(rules.Trim, func(v Value) Value {
		if v.Kind != KindText {
			return v
		}
		return textValue(strings.TrimSpace(v.Text))
	})

	if len(rules.Essential) > 0 {
		out = out.Filter(func(r Row) bool {
			for _, col := range rules.Essential {
				if r.Get(col).Missing() {
					return false
				}
			}
			return true
		})
	}

	return out, nil
}

// mapColumns returns a copy of t with fn applied to every cell of the named columns
func (t *Table) mapColumns(names []string, fn func(Value) Value) *Table {
	var idx []int
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return t
	}

	out := &Table{columns: t.columns, index: t.index, rows: make([][]Value, len(t.rows))}
	for r, row := range t.rows {
		cp := make([]Value, len(row))
		copy(cp, row)
		for _, i := range idx {
			cp[i] = fn(cp[i])
		}
		out.rows[r] = cp
	}
	return out
}
