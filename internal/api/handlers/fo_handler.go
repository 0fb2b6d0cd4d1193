package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
)

// DerivativesService is the F&O service used by FOHandler
type DerivativesService interface {
	Data(ctx context.Context, date time.Time, instrumentType string) (*service.FODataResult, error)
	Futures(ctx context.Context, symbol string, date *time.Time) (*service.FuturesResult, error)
	Options(ctx context.Context, symbol string, date *time.Time, optionType string) (*service.OptionsResult, error)
	Nifty(ctx context.Context, date *time.Time) (*service.NiftyResult, error)
}

// FOHandler is the handler for the F&O API
type FOHandler struct {
	service DerivativesService
}

// NewFOHandler creates a new handler for the F&O API
func NewFOHandler(service DerivativesService) *FOHandler {
	return &FOHandler{service: service}
}

// GetData returns the F&O bhavcopy of `:date`, optionally for one `instrument_type`
func (h *FOHandler) GetData(c echo.Context) error {
	date, err := parseDate("date", c.Param("date"))
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.Data(c.Request().Context(), date, c.QueryParam("instrument_type"))
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// GetFutures returns the futures of `:symbol`
func (h *FOHandler) GetFutures(c echo.Context) error {
	date, err := foDate(c)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.Futures(c.Request().Context(), c.Param("symbol"), date)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// GetOptions returns the options of `:symbol`, optionally of one `option_type`
func (h *FOHandler) GetOptions(c echo.Context) error {
	date, err := foDate(c)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.Options(c.Request().Context(), c.Param("symbol"), date, c.QueryParam("option_type"))
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// GetNifty returns NIFTY index futures and options
func (h *FOHandler) GetNifty(c echo.Context) error {
	date, err := foDate(c)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.Nifty(c.Request().Context(), date)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// foDate reads the optional `date`, also accepted as `target_date`
func foDate(c echo.Context) (*time.Time, error) {
	return parseOptionalDate("date", queryParam(c, "date", "target_date"))
}
