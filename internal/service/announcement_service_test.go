package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsvirk/bhavapi/internal/announcement"
	"github.com/nsvirk/bhavapi/internal/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncementService_NSE(t *testing.T) {
	getter := &fakeGetter{bodies: map[string][]byte{
		announcement.NSEURL("INFY"): []byte(`[
			{"symbol":"INFY","sm_name":"Infosys Limited","desc":"Press Release","an_dt":"03 Jan 2025 18:00:00","attchmntFile":"a.pdf","attchmntText":"Update"},
			{"symbol":"INFY","sm_name":"Infosys Limited","desc":"Old","an_dt":"01 Dec 2024 10:00:00","attchmntFile":"b.pdf","attchmntText":"Update"},
			{"symbol":"INFY","sm_name":"Infosys Limited","desc":"Undated","an_dt":"","attchmntFile":"","attchmntText":""}
		]`),
	}}
	svc := NewAnnouncementService(getter, fixedNow, "")

	from := day("2025-01-01")
	res := svc.NSE(context.Background(), "infy", &from, nil, 100)
	assert.Equal(t, "INFY", res.Symbol)
	require.NotNil(t, res.FromDate)
	assert.Equal(t, "2025-01-01", *res.FromDate)
	assert.Nil(t, res.ToDate)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "Press Release", res.Announcements[0].Subject)
	assert.Equal(t, "Undated", res.Announcements[1].Subject)
	assert.Empty(t, res.Message)

	require.Len(t, getter.reqs, 1)
	assert.Equal(t, announcement.NSEPrimeURL, getter.reqs[0].PrimeURL)
}

func TestAnnouncementService_NSEFailureIsEmpty(t *testing.T) {
	svc := NewAnnouncementService(&fakeGetter{err: &fetcher.TransientError{StatusCode: 401}}, fixedNow, "")

	res := svc.NSE(context.Background(), "INFY", nil, nil, 100)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Announcements)
	assert.Equal(t, "No announcements found for this symbol and date range", res.Message)
}

func TestAnnouncementService_BSE(t *testing.T) {
	url := announcement.BSEURL("500325", nil, nil, 1, testToday)
	getter := &fakeGetter{bodies: map[string][]byte{
		url: []byte(`{"Table":[{"ATTACHMENTNAME":"x.pdf","News_submission_dt":"05-Jan-2025 12:00:00","SCRIP_CD":500325,"SLONGNAME":"Reliance","HEADLINE":"H","CATEGORYNAME":"C","NEWSID":"n1","TotalPageCnt":3}]}`),
	}}
	svc := NewAnnouncementService(getter, fixedNow, "")

	res := svc.BSE(context.Background(), "500325", nil, nil, 1)
	require.NotNil(t, res.ScripCode)
	assert.Equal(t, "500325", *res.ScripCode)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)
	require.Len(t, res.Announcements, 1)
	assert.Equal(t, "https://www.bseindia.com/xml-data/corpfiling/AttachLive/x.pdf", res.Announcements[0].AttachmentURL)
	assert.Empty(t, getter.reqs[0].PrimeURL)
}

func TestAnnouncementService_BSEFailure(t *testing.T) {
	svc := NewAnnouncementService(&fakeGetter{err: errors.New("timeout")}, fixedNow, "")

	res := svc.BSE(context.Background(), "", nil, nil, 2)
	assert.Nil(t, res.ScripCode)
	assert.Equal(t, 0, res.TotalPages)
	assert.Equal(t, 2, res.CurrentPage)
	assert.Empty(t, res.Announcements)
}

func TestAnnouncementService_ScripCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bse_scrip_codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("scrip_code,name\n500325,RELIANCE\n532540,TCS\n"), 0o600))

	svc := NewAnnouncementService(&fakeGetter{}, time.Now, path)
	res, err := svc.ScripCodes()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 500325.0, res.ScripCodes[0]["scrip_code"])
	assert.Equal(t, "TCS", res.ScripCodes[1]["name"])
}

func TestAnnouncementService_ScripCodesMissingFile(t *testing.T) {
	svc := NewAnnouncementService(&fakeGetter{}, time.Now, filepath.Join(t.TempDir(), "missing.csv"))

	_, err := svc.ScripCodes()
	assert.True(t, errors.Is(err, ErrNoData))
}
