package announcement

import (
	"net/url"
	"time"
)

const (
	nseAnnouncementsURL = "https://www.nseindia.com/api/corporate-announcements?index=equities&symbol="
	// NSEPrimeURL hands out the cookies the NSE API expects
	NSEPrimeURL = "https://www.nseindia.com/companies-listing/corporate-filings-announcements"
)

// NSEURL returns the announcements API URL for symbol
func NSEURL(symbol string) string {
	return nseAnnouncementsURL + url.QueryEscape(symbol)
}

// NSERecord is one element of the NSE corporate-announcements response
type NSERecord struct {
	Symbol         string `json:"symbol"`
	CompanyName    string `json:"sm_name"`
	Description    string `json:"desc"`
	BroadcastDate  string `json:"an_dt"`
	AttachmentFile string `json:"attchmntFile"`
	AttachmentText string `json:"attchmntText"`
}

// Normalize converts the record
func (r NSERecord) Normalize(_ time.Time) Announcement {
	a := Announcement{
		Source:        SourceNSE,
		Symbol:        r.Symbol,
		CompanyName:   r.CompanyName,
		Subject:       r.Description,
		BroadcastDate: r.BroadcastDate,
		AttachmentURL: r.AttachmentFile,
		Category:      r.AttachmentText,
	}
	if d, ok := ParseDate(r.BroadcastDate, NSEDateParsers); ok {
		a.Date = d.Format(dateLayout)
	}
	return a
}

// FilterNSE normalises records in order and keeps those within [from, to].
// Records whose date cannot be parsed are always kept. Collection stops at limit.
func FilterNSE(records []NSERecord, from, to *time.Time, limit int) []Announcement {
	out := make([]Announcement, 0)
	for _, r := range records {
		a := r.Normalize(time.Time{})
		if d, ok := a.ParsedDate(); ok {
			if from != nil && d.Before(dateOnly(*from)) {
				continue
			}
			if to != nil && d.After(dateOnly(*to)) {
				continue
			}
		}
		out = append(out, a)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
