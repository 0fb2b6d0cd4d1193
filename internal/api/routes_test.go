package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/internal/models"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct{}

func (stubAuth) Authenticate(ctx context.Context, token string) (*models.UserIdentity, error) {
	if token == "ok" {
		return &models.UserIdentity{ID: 1, Token: token}, nil
	}
	return nil, service.ErrUnauthorized
}

func (stubAuth) LoginURL(state string) string { return "https://accounts.google.com/?state=" + state }

func (stubAuth) CompleteLogin(ctx context.Context, code string) (string, error) { return "", nil }

func (stubAuth) Logout(ctx context.Context, identity *models.UserIdentity) error { return nil }

type stubStocks struct{}

func (stubStocks) Bhavcopy(ctx context.Context, date time.Time) (*service.BhavcopyResult, error) {
	return &service.BhavcopyResult{}, nil
}

func (stubStocks) Compare(ctx context.Context, date1, date2 time.Time, symbols []string) (*service.CompareResult, error) {
	return &service.CompareResult{}, nil
}

func (stubStocks) LiveSearch(ctx context.Context, symbols []string, date1, date2 time.Time) (*service.LiveSearchResult, error) {
	return &service.LiveSearchResult{}, nil
}

func (stubStocks) Search(ctx context.Context, q string, limit int) *service.SearchResult {
	return &service.SearchResult{}
}

func (stubStocks) Symbols(ctx context.Context) []string { return []string{"AAA"} }

func newTestServer() *echo.Echo {
	e := echo.New()
	SetupRoutes(e, &config.Config{APIName: "NSE Platform API", APIVersion: "1.0.0", FrontendURL: "http://app"}, Services{
		Auth:   stubAuth{},
		Stocks: stubStocks{},
	})
	return e
}

func do(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutes_Public(t *testing.T) {
	e := newTestServer()

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/", "").Code)
	assert.Equal(t, http.StatusTemporaryRedirect, do(e, http.MethodGet, "/api/auth/google/login", "").Code)
}

func TestSetupRoutes_ProtectedRequireToken(t *testing.T) {
	e := newTestServer()

	for _, target := range []string{
		"/api/stocks/symbols",
		"/api/fo/nifty",
		"/api/announcements/bse",
		"/api/announcements/bse/scrip-codes",
		"/api/auth/me",
	} {
		assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, target, "").Code, target)
		assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, target, "bad").Code, target)
	}
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/api/auth/logout", "").Code)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/stocks/symbols", "ok").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/auth/me", "ok").Code)
}

func TestSetupRoutes_Registered(t *testing.T) {
	e := newTestServer()

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/stocks/bhavcopy/:date",
		"GET /api/stocks/compare",
		"GET /api/stocks/live-search",
		"GET /api/stocks/search",
		"GET /api/fo/data/:date",
		"GET /api/fo/futures/:symbol",
		"GET /api/fo/options/:symbol",
		"GET /api/announcements/nse/:symbol",
		"GET /api/auth/google/callback",
		"POST /api/auth/logout",
	} {
		assert.True(t, routes[want], want)
	}
}
