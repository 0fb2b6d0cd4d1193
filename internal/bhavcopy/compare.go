package bhavcopy

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TopN is the size of the gainers and losers slices
const TopN = 10

// ComparisonRow is the price and volume change of one instrument between two dates
type ComparisonRow struct {
	Symbol         string  `json:"symbol"`
	InstrumentName string  `json:"instrument_name"`
	OldPrice       float64 `json:"old_price"`
	NewPrice       float64 `json:"new_price"`
	PctChange      float64 `json:"pct_change"`
	VolumeRatio    float64 `json:"volume_ratio"`
	NewVolume      int64   `json:"new_volume"`
}

type joinKey struct {
	symbol string
	name   string
}

// Compare inner-joins old and new rows on (symbol, instrument name) and
// returns the change per pair sorted by pct_change descending. Pairs with a
// zero old price or zero old volume are left out. Changes are computed in
// float64 and rounded half to even at two places.
func Compare(oldRows, newRows []BhavRow) []ComparisonRow {
	byKey := make(map[joinKey][]int, len(newRows))
	for i, r := range newRows {
		k := joinKey{r.Symbol, r.InstrumentName}
		byKey[k] = append(byKey[k], i)
	}

	rows := make([]ComparisonRow, 0, len(oldRows))
	for _, o := range oldRows {
		if o.Close == 0 || o.Volume == 0 {
			continue
		}
		for _, i := range byKey[joinKey{o.Symbol, o.InstrumentName}] {
			n := newRows[i]
			pct, ok := round2((n.Close - o.Close) / o.Close * 100)
			if !ok {
				continue
			}
			ratio, ok := round2(n.Volume / o.Volume)
			if !ok {
				continue
			}

			rows = append(rows, ComparisonRow{
				Symbol:         o.Symbol,
				InstrumentName: o.InstrumentName,
				OldPrice:       o.Close,
				NewPrice:       n.Close,
				PctChange:      pct,
				VolumeRatio:    ratio,
				NewVolume:      int64(n.Volume),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PctChange > rows[j].PctChange
	})
	return rows
}

// round2 rounds v half to even at two decimals; non-finite values are rejected
func round2(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64(), true
}

// Gainers returns the first TopN rows of a sorted comparison
func Gainers(rows []ComparisonRow) []ComparisonRow {
	if len(rows) > TopN {
		return rows[:TopN]
	}
	return rows
}

// Losers returns the last TopN rows of a sorted comparison, keeping their order
func Losers(rows []ComparisonRow) []ComparisonRow {
	if len(rows) > TopN {
		return rows[len(rows)-TopN:]
	}
	return rows
}

// ParseSymbols splits a comma separated list into trimmed upper-case symbols,
// dropping empty entries
func ParseSymbols(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterSymbols keeps the rows whose symbol is in symbols
func FilterSymbols(rows []ComparisonRow, symbols []string) []ComparisonRow {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	out := make([]ComparisonRow, 0)
	for _, r := range rows {
		if _, ok := set[r.Symbol]; ok {
			out = append(out, r)
		}
	}
	return out
}

// MissingSymbols lists the requested symbols absent from rows, in request order
func MissingSymbols(rows []ComparisonRow, symbols []string) []string {
	found := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		found[r.Symbol] = struct{}{}
	}
	out := make([]string, 0)
	for _, s := range symbols {
		if _, ok := found[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
