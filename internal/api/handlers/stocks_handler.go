package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// StockService is the cash market service used by StocksHandler
type StockService interface {
	Bhavcopy(ctx context.Context, date time.Time) (*service.BhavcopyResult, error)
	Compare(ctx context.Context, date1, date2 time.Time, symbols []string) (*service.CompareResult, error)
	LiveSearch(ctx context.Context, symbols []string, date1, date2 time.Time) (*service.LiveSearchResult, error)
	Search(ctx context.Context, q string, limit int) *service.SearchResult
	Symbols(ctx context.Context) []string
}

// StocksHandler is the handler for the cash market API
type StocksHandler struct {
	service StockService
}

// NewStocksHandler creates a new handler for the cash market API
func NewStocksHandler(service StockService) *StocksHandler {
	return &StocksHandler{service: service}
}

// GetBhavcopy returns the EQ/BE bhavcopy of `:date`
func (h *StocksHandler) GetBhavcopy(c echo.Context) error {
	date, err := parseDate("date", c.Param("date"))
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.Bhavcopy(c.Request().Context(), date)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// CompareDates compares `date1` against `date2`, optionally for `symbols` only.
// An empty `symbols` applies no filter; a list of only separators is rejected.
func (h *StocksHandler) CompareDates(c echo.Context) error {
	date1, date2, err := comparisonDates(c)
	if err != nil {
		return errorResponse(c, err)
	}

	raw := c.QueryParam("symbols")
	symbols := bhavcopy.ParseSymbols(raw)
	if strings.TrimSpace(raw) != "" && len(symbols) == 0 {
		return response.InputError(c, "`symbols` must name at least one symbol")
	}
	result, err := h.service.Compare(c.Request().Context(), date1, date2, symbols)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// LiveSearch compares two dates for a comma separated list of `symbols`
func (h *StocksHandler) LiveSearch(c echo.Context) error {
	symbols := bhavcopy.ParseSymbols(c.QueryParam("symbols"))
	if len(symbols) == 0 {
		return response.InputError(c, "`symbols` is required")
	}
	date1, date2, err := comparisonDates(c)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.LiveSearch(c.Request().Context(), symbols, date1, date2)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// SearchSymbols matches `q` against symbols and names of the latest bhavcopy
func (h *StocksHandler) SearchSymbols(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return response.InputError(c, "`q` is required")
	}
	limit, err := parseIntInRange("limit", c.QueryParam("limit"), defaultSearchLimit, 1, maxSearchLimit)
	if err != nil {
		return errorResponse(c, err)
	}

	return response.SuccessResponse(c, h.service.Search(c.Request().Context(), q, limit))
}

// GetSymbols returns every symbol of the latest bhavcopy
func (h *StocksHandler) GetSymbols(c echo.Context) error {
	symbols := h.service.Symbols(c.Request().Context())
	return response.SuccessResponse(c, map[string]any{"symbols": symbols})
}

func comparisonDates(c echo.Context) (time.Time, time.Time, error) {
	date1, err := parseDate("date1", c.QueryParam("date1"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	date2, err := parseDate("date2", c.QueryParam("date2"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return date1, date2, nil
}
