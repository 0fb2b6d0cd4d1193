package bhavcopy

import (
	"context"
	"fmt"
	"time"

	"github.com/nsvirk/bhavapi/internal/fetcher"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// DateLayout is the API date format
const DateLayout = "2006-01-02"

const (
	equityURLFormat     = "https://nsearchives.nseindia.com/content/cm/BhavCopy_NSE_CM_0_0_0_%s_F_0000.csv.zip"
	derivativeURLFormat = "https://nsearchives.nseindia.com/content/fo/BhavCopy_NSE_FO_0_0_0_%s_F_0000.csv.zip"
	nseHomeURL          = "https://www.nseindia.com"
)

// EquityURL returns the cash market archive URL for date
func EquityURL(date time.Time) string {
	return fmt.Sprintf(equityURLFormat, date.Format("20060102"))
}

// DerivativeURL returns the F&O archive URL for date
func DerivativeURL(date time.Time) string {
	return fmt.Sprintf(derivativeURLFormat, date.Format("20060102"))
}

// Getter downloads a remote payload
type Getter interface {
	Get(ctx context.Context, req fetcher.Request) ([]byte, error)
}

// Source downloads and cleans bhavcopy tables
type Source struct {
	getter Getter
}

// NewSource creates a Source backed by getter
func NewSource(getter Getter) *Source {
	return &Source{getter: getter}
}

// Equity returns the cleaned EQ/BE cash market table for date
func (s *Source) Equity(ctx context.Context, date time.Time) (*Table, error) {
	return s.load(ctx, EquityURL(date), EquityRules)
}

// Derivatives returns the cleaned F&O table for date
func (s *Source) Derivatives(ctx context.Context, date time.Time) (*Table, error) {
	return s.load(ctx, DerivativeURL(date), DerivativeRules)
}

func (s *Source) load(ctx context.Context, url string, rules CleanRules) (*Table, error) {
	defer zaplogger.TimeTrack(time.Now(), "bhavcopy load "+url)

	raw, err := s.getter.Get(ctx, fetcher.Request{
		URL:      url,
		PrimeURL: nseHomeURL,
		Header:   fetcher.NSEArchiveHeaders(),
	})
	if err != nil {
		return nil, err
	}
	t, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return Clean(t, rules)
}
