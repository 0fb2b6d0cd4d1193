package service

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/nsvirk/bhavapi/internal/announcement"
	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/fetcher"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// NSEAnnouncementsResult lists NSE filings of one symbol
type NSEAnnouncementsResult struct {
	Symbol        string                      `json:"symbol"`
	FromDate      *string                     `json:"from_date"`
	ToDate        *string                     `json:"to_date"`
	Count         int                         `json:"count"`
	Announcements []announcement.Announcement `json:"announcements"`
	Message       string                      `json:"message,omitempty"`
}

// BSEAnnouncementsResult is one page of BSE filings
type BSEAnnouncementsResult struct {
	ScripCode *string `json:"scrip_code"`
	FromDate  *string `json:"from_date"`
	ToDate    *string `json:"to_date"`
	announcement.BSEPage
}

// ScripCodesResult lists the known BSE scrip codes
type ScripCodesResult struct {
	Count      int              `json:"count"`
	ScripCodes []map[string]any `json:"scrip_codes"`
}

// AnnouncementService fetches exchange announcements
type AnnouncementService struct {
	getter         bhavcopy.Getter
	now            func() time.Time
	scripCodesFile string
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(getter bhavcopy.Getter, now func() time.Time, scripCodesFile string) *AnnouncementService {
	return &AnnouncementService{getter: getter, now: now, scripCodesFile: scripCodesFile}
}

// NSE returns up to limit filings of symbol within the optional date range.
// Upstream failures yield an empty list.
func (s *AnnouncementService) NSE(ctx context.Context, symbol string, from, to *time.Time, limit int) *NSEAnnouncementsResult {
	symbol = strings.ToUpper(symbol)
	result := &NSEAnnouncementsResult{
		Symbol:   symbol,
		FromDate: formatOptional(from),
		ToDate:   formatOptional(to),
	}

	records, err := s.fetchNSE(ctx, symbol)
	if err != nil {
		zaplogger.Error("nse announcements fetch failed", zaplogger.Fields{"symbol": symbol, "error": err.Error()})
	}

	result.Announcements = announcement.FilterNSE(records, from, to, limit)
	result.Count = len(result.Announcements)
	if result.Count == 0 {
		result.Message = "No announcements found for this symbol and date range"
	}
	return result
}

func (s *AnnouncementService) fetchNSE(ctx context.Context, symbol string) ([]announcement.NSERecord, error) {
	body, err := s.getter.Get(ctx, fetcher.Request{
		URL:      announcement.NSEURL(symbol),
		PrimeURL: announcement.NSEPrimeURL,
		Header:   fetcher.NSEAPIHeaders(),
	})
	if err != nil {
		return nil, err
	}
	var records []announcement.NSERecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// BSE returns one page of filings. Dates default to today.
// Upstream failures yield an empty page with zero pages.
func (s *AnnouncementService) BSE(ctx context.Context, scripCode string, from, to *time.Time, page int) *BSEAnnouncementsResult {
	result := &BSEAnnouncementsResult{
		FromDate: formatOptional(from),
		ToDate:   formatOptional(to),
	}
	if scripCode != "" {
		result.ScripCode = &scripCode
	}

	now := s.now()
	body, err := s.getter.Get(ctx, fetcher.Request{
		URL:    announcement.BSEURL(scripCode, from, to, page, now),
		Header: fetcher.BSEAPIHeaders(),
	})
	if err != nil {
		zaplogger.Error("bse announcements fetch failed", zaplogger.Fields{"scrip_code": scripCode, "error": err.Error()})
		result.BSEPage = announcement.EmptyBSEPage(page)
		return result
	}

	var resp announcement.BSEResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zaplogger.Error("bse announcements decode failed", zaplogger.Fields{"scrip_code": scripCode, "error": err.Error()})
		result.BSEPage = announcement.EmptyBSEPage(page)
		return result
	}

	result.BSEPage = announcement.NewBSEPage(resp, page, now)
	return result
}

// ScripCodes reads the configured BSE scrip code CSV
func (s *AnnouncementService) ScripCodes() (*ScripCodesResult, error) {
	f, err := os.Open(s.scripCodesFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, noData("BSE scrip codes file not found")
		}
		return nil, err
	}
	defer f.Close()

	t, err := bhavcopy.ParseCSV(f)
	if err != nil {
		return nil, err
	}
	return &ScripCodesResult{Count: t.Len(), ScripCodes: t.Records()}, nil
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(bhavcopy.DateLayout)
	return &s
}
