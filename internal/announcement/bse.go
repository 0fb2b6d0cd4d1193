package announcement

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	bseAnnouncementsURL = "https://api.bseindia.com/BseIndiaAPI/api/AnnGetData/w"
	bseAttachLiveURL    = "https://www.bseindia.com/xml-data/corpfiling/AttachLive/"
	bseAttachHisURL     = "https://www.bseindia.com/xml-data/corpfiling/AttachHis/"

	// liveAttachmentDays is how long BSE keeps filings under AttachLive
	liveAttachmentDays = 2
)

// BSEURL returns the announcements API URL. Dates default to today in now's location.
func BSEURL(scripCode string, from, to *time.Time, page int, now time.Time) string {
	fromDate, toDate := now, now
	if from != nil {
		fromDate = *from
	}
	if to != nil {
		toDate = *to
	}
	q := []string{
		"pageno=" + strconv.Itoa(page),
		"strCat=-1",
		"strPrevDate=" + fromDate.Format("20060102"),
		"strScrip=" + url.QueryEscape(scripCode),
		"strSearch=P",
		"strToDate=" + toDate.Format("20060102"),
		"strType=C",
	}
	return bseAnnouncementsURL + "?" + strings.Join(q, "&")
}

// BSEResponse is the AnnGetData payload
type BSEResponse struct {
	Table []BSERecord `json:"Table"`
}

// BSERecord is one row of the BSE response. The API is loose with types so
// mixed fields are decoded as any.
type BSERecord struct {
	AttachmentName any    `json:"ATTACHMENTNAME"`
	SubmissionDate string `json:"News_submission_dt"`
	ScripCode      any    `json:"SCRIP_CD"`
	CompanyName    string `json:"SLONGNAME"`
	Headline       string `json:"HEADLINE"`
	Category       string `json:"CATEGORYNAME"`
	NewsID         any    `json:"NEWSID"`
	TotalPageCnt   any    `json:"TotalPageCnt"`
}

// Normalize converts the record; now decides whether the attachment is still live
func (r BSERecord) Normalize(now time.Time) Announcement {
	a := Announcement{
		Source:        SourceBSE,
		Symbol:        stringify(r.ScripCode),
		CompanyName:   r.CompanyName,
		Subject:       r.Headline,
		BroadcastDate: r.SubmissionDate,
		Category:      r.Category,
		NewsID:        stringify(r.NewsID),
	}
	d, ok := ParseDate(r.SubmissionDate, BSEDateParsers)
	if ok {
		a.Date = d.Format(dateLayout)
	}
	a.AttachmentURL = AttachmentURL(stringify(r.AttachmentName), d, ok, now)
	return a
}

// AttachmentURL picks AttachLive for filings submitted within the last two
// days and AttachHis otherwise, including when the date is unknown
func AttachmentURL(name string, submitted time.Time, known bool, now time.Time) string {
	if name == "" {
		return ""
	}
	threshold := dateOnly(now).AddDate(0, 0, -liveAttachmentDays)
	if known && !dateOnly(submitted).Before(threshold) {
		return bseAttachLiveURL + name
	}
	return bseAttachHisURL + name
}

// BSEPage is one page of BSE announcements
type BSEPage struct {
	Announcements []Announcement `json:"announcements"`
	TotalPages    int            `json:"total_pages"`
	CurrentPage   int            `json:"current_page"`
}

// NewBSEPage normalises a response. The page count comes from the first row.
func NewBSEPage(resp BSEResponse, page int, now time.Time) BSEPage {
	p := BSEPage{
		Announcements: NormalizeAll(resp.Table, now),
		TotalPages:    1,
		CurrentPage:   page,
	}
	if len(resp.Table) > 0 {
		if n, ok := toInt(resp.Table[0].TotalPageCnt); ok {
			p.TotalPages = n
		}
	}
	return p
}

// EmptyBSEPage is returned when BSE could not be reached
func EmptyBSEPage(page int) BSEPage {
	return BSEPage{Announcements: []Announcement{}, TotalPages: 0, CurrentPage: page}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}
