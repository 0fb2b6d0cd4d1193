// Package announcement normalises NSE and BSE corporate announcements into
// one shape.
package announcement

import "time"

// Source names the exchange an announcement came from
type Source string

const (
	SourceNSE Source = "NSE"
	SourceBSE Source = "BSE"
)

// Announcement is one corporate filing. Symbol holds the NSE ticker or the BSE scrip code.
type Announcement struct {
	Source        Source `json:"source"`
	Symbol        string `json:"symbol"`
	CompanyName   string `json:"company_name"`
	Subject       string `json:"subject"`
	BroadcastDate string `json:"broadcast_date"`
	Date          string `json:"date,omitempty"`
	AttachmentURL string `json:"attachment_url"`
	Category      string `json:"category"`
	NewsID        string `json:"news_id,omitempty"`
}

// ParsedDate returns the calendar date of the announcement, if it could be parsed
func (a Announcement) ParsedDate() (time.Time, bool) {
	if a.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, a.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SourceRecord is a raw exchange record that can be normalised
type SourceRecord interface {
	Normalize(now time.Time) Announcement
}

// NormalizeAll converts raw records keeping their order
func NormalizeAll[R SourceRecord](records []R, now time.Time) []Announcement {
	out := make([]Announcement, 0, len(records))
	for _, r := range records {
		out = append(out, r.Normalize(now))
	}
	return out
}
