package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/cache"
)

const (
	// optionRowLimit caps option rows returned in one response
	optionRowLimit = 200
	// niftyMinSymbolRows is the TckrSymb match count below which FinInstrmNm is searched too
	niftyMinSymbolRows = 10
)

var (
	futureTypes      = []string{"FUTSTK", "FUTIDX", "STF", "IDF"}
	optionTypes      = []string{"OPTSTK", "OPTIDX", "STO", "IDO"}
	niftyFutureTypes = []string{"FUTIDX", "IDF"}
	niftyOptionTypes = []string{"OPTIDX", "IDO"}
)

// FODataResult is the F&O table of one day
type FODataResult struct {
	Date  string           `json:"date"`
	Count int              `json:"count"`
	Data  []map[string]any `json:"data"`
}

// FuturesResult lists the futures of one underlying
type FuturesResult struct {
	Symbol string           `json:"symbol"`
	Date   string           `json:"date"`
	Count  int              `json:"count"`
	Data   []map[string]any `json:"data"`
}

// OptionsResult lists the options of one underlying; Data is capped, Count is not
type OptionsResult struct {
	Symbol     string           `json:"symbol"`
	Date       string           `json:"date"`
	OptionType *string          `json:"option_type"`
	Count      int              `json:"count"`
	Data       []map[string]any `json:"data"`
}

// NiftyResult holds NIFTY index derivatives
type NiftyResult struct {
	Date         string           `json:"date"`
	FuturesCount int              `json:"futures_count"`
	OptionsCount int              `json:"options_count"`
	Futures      []map[string]any `json:"futures"`
	Options      []map[string]any `json:"options"`
}

// FOService serves the F&O bhavcopy
type FOService struct {
	source  BhavSource
	tables  *cache.Cache[*bhavcopy.Table]
	horizon int
	now     func() time.Time
}

// NewFOService creates a new FOService. tables caches one table per date.
func NewFOService(source BhavSource, tables *cache.Cache[*bhavcopy.Table], horizon int, now func() time.Time) *FOService {
	return &FOService{source: source, tables: tables, horizon: horizon, now: now}
}

// Data returns the F&O table of date, optionally restricted to one instrument type
func (s *FOService) Data(ctx context.Context, date time.Time, instrumentType string) (*FODataResult, error) {
	t, err := s.table(ctx, date)
	if err != nil {
		return nil, noData("No F&O data available for %s", date.Format(bhavcopy.DateLayout))
	}
	if instrumentType != "" && t.HasColumn("FinInstrmTp") {
		want := strings.ToUpper(instrumentType)
		t = t.Filter(func(r bhavcopy.Row) bool { return r.Text("FinInstrmTp") == want })
	}
	return &FODataResult{
		Date:  date.Format(bhavcopy.DateLayout),
		Count: t.Len(),
		Data:  t.Records(),
	}, nil
}

// Futures returns the futures of symbol on date, or on the latest day when date is nil
func (s *FOService) Futures(ctx context.Context, symbol string, date *time.Time) (*FuturesResult, error) {
	t, resolved, err := s.resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	futures := underlying(t, symbol, futureTypes)
	return &FuturesResult{
		Symbol: symbol,
		Date:   resolved.Format(bhavcopy.DateLayout),
		Count:  futures.Len(),
		Data:   futures.Records(),
	}, nil
}

// Options returns the options of symbol, optionally only calls or puts
func (s *FOService) Options(ctx context.Context, symbol string, date *time.Time, optionType string) (*OptionsResult, error) {
	t, resolved, err := s.resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	options := underlying(t, symbol, optionTypes)

	var optType *string
	if optionType != "" {
		optType = &optionType
		want := strings.ToUpper(optionType)
		if options.HasColumn("OptnTp") {
			options = options.Filter(func(r bhavcopy.Row) bool { return r.Text("OptnTp") == want })
		} else if options.HasColumn("FinInstrmNm") {
			options = options.Filter(func(r bhavcopy.Row) bool { return strings.Contains(r.Text("FinInstrmNm"), want) })
		}
	}

	return &OptionsResult{
		Symbol:     symbol,
		Date:       resolved.Format(bhavcopy.DateLayout),
		OptionType: optType,
		Count:      options.Len(),
		Data:       options.Head(optionRowLimit).Records(),
	}, nil
}

// Nifty returns the NIFTY index futures and options
func (s *FOService) Nifty(ctx context.Context, date *time.Time) (*NiftyResult, error) {
	t, resolved, err := s.resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	nifty := NiftyRows(t)
	if nifty.Empty() {
		return nil, noData("No NIFTY data found in the file")
	}

	futures := filterTypes(nifty, niftyFutureTypes, "FUT")
	options := filterTypes(nifty, niftyOptionTypes, "OPT")

	return &NiftyResult{
		Date:         resolved.Format(bhavcopy.DateLayout),
		FuturesCount: futures.Len(),
		OptionsCount: options.Len(),
		Futures:      futures.Records(),
		Options:      options.Head(optionRowLimit).Records(),
	}, nil
}

// NiftyRows selects rows whose ticker mentions NIFTY. When that finds fewer
// than ten rows the instrument name is searched as well.
func NiftyRows(t *bhavcopy.Table) *bhavcopy.Table {
	containsNifty := func(col string) func(bhavcopy.Row) bool {
		return func(r bhavcopy.Row) bool {
			return strings.Contains(strings.ToUpper(r.Text(col)), "NIFTY")
		}
	}

	nifty := t.Head(0)
	if t.HasColumn("TckrSymb") {
		nifty = t.Filter(containsNifty("TckrSymb"))
	}
	if nifty.Len() < niftyMinSymbolRows && t.HasColumn("FinInstrmNm") {
		nifty = nifty.ConcatDistinct(t.Filter(containsNifty("FinInstrmNm")))
	}
	return nifty
}

// filterTypes keeps rows whose FinInstrmTp is in types, falling back to a
// case-insensitive substring match on fallback
func filterTypes(t *bhavcopy.Table, types []string, fallback string) *bhavcopy.Table {
	if !t.HasColumn("FinInstrmTp") {
		return t.Head(0)
	}
	out := t.Filter(func(r bhavcopy.Row) bool { return slices.Contains(types, r.Text("FinInstrmTp")) })
	if out.Empty() {
		out = t.Filter(func(r bhavcopy.Row) bool {
			return strings.Contains(strings.ToUpper(r.Text("FinInstrmTp")), fallback)
		})
	}
	return out
}

// underlying keeps rows of the given instrument types for symbol
func underlying(t *bhavcopy.Table, symbol string, types []string) *bhavcopy.Table {
	if !t.HasColumn("FinInstrmTp") || !t.HasColumn("TckrSymb") {
		return t.Head(0)
	}
	return t.Filter(func(r bhavcopy.Row) bool {
		return slices.Contains(types, r.Text("FinInstrmTp")) && strings.ToUpper(r.Text("TckrSymb")) == symbol
	})
}

// PruneCache drops expired F&O tables
func (s *FOService) PruneCache() int {
	return s.tables.Prune()
}

// resolve loads date, or the latest available day when date is nil
func (s *FOService) resolve(ctx context.Context, date *time.Time) (*bhavcopy.Table, time.Time, error) {
	if date != nil {
		t, err := s.table(ctx, *date)
		if err != nil {
			return nil, time.Time{}, noData("No F&O data available for %s", date.Format(bhavcopy.DateLayout))
		}
		return t, *date, nil
	}

	t, resolved, err := bhavcopy.ResolveLatest(ctx, s.now(), s.horizon, s.table)
	if err != nil {
		return nil, time.Time{}, noData("No F&O data available. Market may be closed.")
	}
	return t, resolved, nil
}

// table returns the cached F&O table of date
func (s *FOService) table(ctx context.Context, date time.Time) (*bhavcopy.Table, error) {
	key := date.Format(bhavcopy.DateLayout)
	t, err := s.tables.GetOrFetch(ctx, key, func(ctx context.Context) (*bhavcopy.Table, error) {
		return s.source.Derivatives(ctx, date)
	})
	if err != nil {
		logFetchError("fo bhavcopy", key, err)
		return nil, err
	}
	return t, nil
}
