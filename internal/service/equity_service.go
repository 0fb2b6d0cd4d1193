package service

import (
	"context"
	"strings"
	"time"

	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/cache"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

const latestKey = "latest"

// BhavSource loads cleaned bhavcopy tables for a trading date
type BhavSource interface {
	Equity(ctx context.Context, date time.Time) (*bhavcopy.Table, error)
	Derivatives(ctx context.Context, date time.Time) (*bhavcopy.Table, error)
}

// BhavcopyResult is one day of cash market prices
type BhavcopyResult struct {
	Date  string           `json:"date"`
	Count int              `json:"count"`
	Data  []map[string]any `json:"data"`
}

// CompareResult is the change between two trading days
type CompareResult struct {
	Date1   string                   `json:"date1"`
	Date2   string                   `json:"date2"`
	Count   int                      `json:"count"`
	Gainers []bhavcopy.ComparisonRow `json:"gainers"`
	Losers  []bhavcopy.ComparisonRow `json:"losers"`
	Data    []bhavcopy.ComparisonRow `json:"data"`
}

// LiveSearchResult is a comparison restricted to requested symbols
type LiveSearchResult struct {
	Date1           string                   `json:"date1"`
	Date2           string                   `json:"date2"`
	SearchedSymbols []string                 `json:"searched_symbols"`
	FoundCount      int                      `json:"found_count"`
	NotFound        []string                 `json:"not_found"`
	Data            []bhavcopy.ComparisonRow `json:"data"`
}

// SymbolMatch is one search hit
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SearchResult lists symbols matching a query
type SearchResult struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Results []SymbolMatch `json:"results"`
}

// EquityService serves the cash market bhavcopy
type EquityService struct {
	source  BhavSource
	latest  *cache.Cache[*bhavcopy.Table]
	horizon int
	now     func() time.Time
}

// NewEquityService creates a new EquityService. latest caches the most recent table.
func NewEquityService(source BhavSource, latest *cache.Cache[*bhavcopy.Table], horizon int, now func() time.Time) *EquityService {
	return &EquityService{source: source, latest: latest, horizon: horizon, now: now}
}

// Bhavcopy returns the EQ/BE prices of one day
func (s *EquityService) Bhavcopy(ctx context.Context, date time.Time) (*BhavcopyResult, error) {
	dateStr := date.Format(bhavcopy.DateLayout)
	t, err := s.load(ctx, date)
	if err != nil {
		return nil, err
	}
	return &BhavcopyResult{
		Date:  dateStr,
		Count: t.Len(),
		Data:  t.Project(bhavcopy.EquityColumns),
	}, nil
}

// Compare compares closing prices and volumes of two days, optionally
// restricted to symbols
func (s *EquityService) Compare(ctx context.Context, date1, date2 time.Time, symbols []string) (*CompareResult, error) {
	rows, err := s.compare(ctx, date1, date2)
	if err != nil {
		return nil, err
	}
	if len(symbols) > 0 {
		rows = bhavcopy.FilterSymbols(rows, symbols)
	}
	return &CompareResult{
		Date1:   date1.Format(bhavcopy.DateLayout),
		Date2:   date2.Format(bhavcopy.DateLayout),
		Count:   len(rows),
		Gainers: bhavcopy.Gainers(rows),
		Losers:  bhavcopy.Losers(rows),
		Data:    rows,
	}, nil
}

// LiveSearch compares two days for the given symbols and reports the ones not found
func (s *EquityService) LiveSearch(ctx context.Context, symbols []string, date1, date2 time.Time) (*LiveSearchResult, error) {
	rows, err := s.compare(ctx, date1, date2)
	if err != nil {
		return nil, err
	}
	found := bhavcopy.FilterSymbols(rows, symbols)
	return &LiveSearchResult{
		Date1:           date1.Format(bhavcopy.DateLayout),
		Date2:           date2.Format(bhavcopy.DateLayout),
		SearchedSymbols: symbols,
		FoundCount:      len(found),
		NotFound:        bhavcopy.MissingSymbols(found, symbols),
		Data:            found,
	}, nil
}

// Search matches q against symbols and company names of the latest table
func (s *EquityService) Search(ctx context.Context, q string, limit int) *SearchResult {
	result := &SearchResult{Query: q, Results: []SymbolMatch{}}

	t, err := s.Latest(ctx)
	if err != nil || !t.HasColumn("TckrSymb") {
		return result
	}

	needle := strings.ToUpper(q)
	hasName := t.HasColumn("FinInstrmNm")
	seen := make(map[SymbolMatch]struct{})
	for i := 0; i < t.Len() && len(result.Results) < limit; i++ {
		row := t.Row(i)
		m := SymbolMatch{Symbol: row.Text("TckrSymb")}
		if hasName {
			m.Name = row.Text("FinInstrmNm")
		} else {
			m.Name = m.Symbol
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if strings.Contains(strings.ToUpper(m.Symbol), needle) || strings.Contains(strings.ToUpper(m.Name), needle) {
			result.Results = append(result.Results, m)
		}
	}
	result.Count = len(result.Results)
	return result
}

// Symbols returns the distinct symbols of the latest table
func (s *EquityService) Symbols(ctx context.Context) []string {
	t, err := s.Latest(ctx)
	if err != nil {
		return []string{}
	}
	return t.UniqueText("TckrSymb")
}

// Latest returns the most recent equity table within the look-back window
func (s *EquityService) Latest(ctx context.Context) (*bhavcopy.Table, error) {
	t, err := s.latest.GetOrFetch(ctx, latestKey, func(ctx context.Context) (*bhavcopy.Table, error) {
		t, date, err := bhavcopy.ResolveLatest(ctx, s.now(), s.horizon, s.source.Equity)
		if err != nil {
			return nil, err
		}
		zaplogger.Info("latest equity bhavcopy cached", zaplogger.Fields{
			"date": date.Format(bhavcopy.DateLayout),
			"rows": t.Len(),
		})
		return t, nil
	})
	if err != nil {
		zaplogger.Warn("latest equity bhavcopy unavailable", zaplogger.Fields{"error": err.Error()})
		return nil, noData("No recent data available")
	}
	return t, nil
}

// PruneCache drops the expired latest table
func (s *EquityService) PruneCache() int {
	return s.latest.Prune()
}

func (s *EquityService) compare(ctx context.Context, date1, date2 time.Time) ([]bhavcopy.ComparisonRow, error) {
	t1, err := s.load(ctx, date1)
	if err != nil {
		return nil, err
	}
	t2, err := s.load(ctx, date2)
	if err != nil {
		return nil, err
	}
	return bhavcopy.Compare(bhavcopy.Rows(t1), bhavcopy.Rows(t2)), nil
}

// load fetches one day and collapses every failure into ErrNoData
func (s *EquityService) load(ctx context.Context, date time.Time) (*bhavcopy.Table, error) {
	dateStr := date.Format(bhavcopy.DateLayout)
	t, err := s.source.Equity(ctx, date)
	if err != nil {
		logFetchError("equity bhavcopy", dateStr, err)
		return nil, noData("No data available for %s", dateStr)
	}
	return t, nil
}
