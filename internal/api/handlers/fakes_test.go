package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/models"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// envelope decodes the response wrapper
type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	ErrorType string          `json:"error_type"`
	Message   string          `json:"message"`
}

// serve runs h for a request to target, with path params set from names/values
func serve(t *testing.T, h echo.HandlerFunc, target string, names []string, values []string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	require.NoError(t, h(c))

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

type fakeStocks struct {
	err         error
	gotDate     time.Time
	gotSymbols  []string
	gotQuery    string
	gotLimit    int
	gotDate1    time.Time
	gotDate2    time.Time
	symbolsList []string
}

func (f *fakeStocks) Bhavcopy(ctx context.Context, date time.Time) (*service.BhavcopyResult, error) {
	f.gotDate = date
	if f.err != nil {
		return nil, f.err
	}
	return &service.BhavcopyResult{Date: date.Format("2006-01-02"), Data: []map[string]any{}}, nil
}

func (f *fakeStocks) Compare(ctx context.Context, date1, date2 time.Time, symbols []string) (*service.CompareResult, error) {
	f.gotDate1, f.gotDate2, f.gotSymbols = date1, date2, symbols
	if f.err != nil {
		return nil, f.err
	}
	return &service.CompareResult{Date1: date1.Format("2006-01-02"), Date2: date2.Format("2006-01-02")}, nil
}

func (f *fakeStocks) LiveSearch(ctx context.Context, symbols []string, date1, date2 time.Time) (*service.LiveSearchResult, error) {
	f.gotDate1, f.gotDate2, f.gotSymbols = date1, date2, symbols
	if f.err != nil {
		return nil, f.err
	}
	return &service.LiveSearchResult{SearchedSymbols: symbols, NotFound: []string{}}, nil
}

func (f *fakeStocks) Search(ctx context.Context, q string, limit int) *service.SearchResult {
	f.gotQuery, f.gotLimit = q, limit
	return &service.SearchResult{Query: q, Results: []service.SymbolMatch{}}
}

func (f *fakeStocks) Symbols(ctx context.Context) []string {
	return f.symbolsList
}

type fakeDerivatives struct {
	err            error
	gotSymbol      string
	gotDate        *time.Time
	gotType        string
	gotOptionType  string
	gotDataDateStr string
}

func (f *fakeDerivatives) Data(ctx context.Context, date time.Time, instrumentType string) (*service.FODataResult, error) {
	f.gotDataDateStr, f.gotType = date.Format("2006-01-02"), instrumentType
	if f.err != nil {
		return nil, f.err
	}
	return &service.FODataResult{Date: f.gotDataDateStr}, nil
}

func (f *fakeDerivatives) Futures(ctx context.Context, symbol string, date *time.Time) (*service.FuturesResult, error) {
	f.gotSymbol, f.gotDate = symbol, date
	if f.err != nil {
		return nil, f.err
	}
	return &service.FuturesResult{Symbol: symbol}, nil
}

func (f *fakeDerivatives) Options(ctx context.Context, symbol string, date *time.Time, optionType string) (*service.OptionsResult, error) {
	f.gotSymbol, f.gotDate, f.gotOptionType = symbol, date, optionType
	if f.err != nil {
		return nil, f.err
	}
	return &service.OptionsResult{Symbol: symbol}, nil
}

func (f *fakeDerivatives) Nifty(ctx context.Context, date *time.Time) (*service.NiftyResult, error) {
	f.gotDate = date
	if f.err != nil {
		return nil, f.err
	}
	return &service.NiftyResult{}, nil
}

type fakeAnnouncements struct {
	scripErr  error
	gotSymbol string
	gotScrip  string
	gotFrom   *time.Time
	gotTo     *time.Time
	gotLimit  int
	gotPage   int
}

func (f *fakeAnnouncements) NSE(ctx context.Context, symbol string, from, to *time.Time, limit int) *service.NSEAnnouncementsResult {
	f.gotSymbol, f.gotFrom, f.gotTo, f.gotLimit = symbol, from, to, limit
	return &service.NSEAnnouncementsResult{Symbol: symbol}
}

func (f *fakeAnnouncements) BSE(ctx context.Context, scripCode string, from, to *time.Time, page int) *service.BSEAnnouncementsResult {
	f.gotScrip, f.gotFrom, f.gotTo, f.gotPage = scripCode, from, to, page
	return &service.BSEAnnouncementsResult{}
}

func (f *fakeAnnouncements) ScripCodes() (*service.ScripCodesResult, error) {
	if f.scripErr != nil {
		return nil, f.scripErr
	}
	return &service.ScripCodesResult{Count: 1, ScripCodes: []map[string]any{{"scrip_code": 500325.0}}}, nil
}

type fakeLogin struct {
	token     string
	err       error
	gotCode   string
	loggedOut *models.UserIdentity
}

func (f *fakeLogin) LoginURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeLogin) CompleteLogin(ctx context.Context, code string) (string, error) {
	f.gotCode = code
	return f.token, f.err
}

func (f *fakeLogin) Logout(ctx context.Context, identity *models.UserIdentity) error {
	f.loggedOut = identity
	return f.err
}
