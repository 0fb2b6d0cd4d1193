package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
)

const (
	defaultNSELimit = 100
	maxNSELimit     = 200
)

// AnnouncementsService is the announcement service used by AnnouncementHandler
type AnnouncementsService interface {
	NSE(ctx context.Context, symbol string, from, to *time.Time, limit int) *service.NSEAnnouncementsResult
	BSE(ctx context.Context, scripCode string, from, to *time.Time, page int) *service.BSEAnnouncementsResult
	ScripCodes() (*service.ScripCodesResult, error)
}

// AnnouncementHandler is the handler for the corporate announcements API
type AnnouncementHandler struct {
	service AnnouncementsService
}

// NewAnnouncementHandler creates a new handler for the announcements API
func NewAnnouncementHandler(service AnnouncementsService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// GetNSEAnnouncements returns NSE filings of `:symbol`
func (h *AnnouncementHandler) GetNSEAnnouncements(c echo.Context) error {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return response.InputError(c, "`symbol` is required")
	}
	from, to, err := dateRange(c)
	if err != nil {
		return errorResponse(c, err)
	}
	limit, err := parseIntInRange("limit", c.QueryParam("limit"), defaultNSELimit, 1, maxNSELimit)
	if err != nil {
		return errorResponse(c, err)
	}

	return response.SuccessResponse(c, h.service.NSE(c.Request().Context(), symbol, from, to, limit))
}

// GetBSEAnnouncements returns one `page` of BSE filings, optionally for one `scrip_code`
func (h *AnnouncementHandler) GetBSEAnnouncements(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return errorResponse(c, err)
	}
	page, err := parseIntInRange("page", c.QueryParam("page"), 1, 1, 0)
	if err != nil {
		return errorResponse(c, err)
	}

	scripCode := strings.TrimSpace(c.QueryParam("scrip_code"))
	return response.SuccessResponse(c, h.service.BSE(c.Request().Context(), scripCode, from, to, page))
}

// GetBSEScripCodes returns the known BSE scrip codes
func (h *AnnouncementHandler) GetBSEScripCodes(c echo.Context) error {
	result, err := h.service.ScripCodes()
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// dateRange reads `from_date`/`to_date`, also accepted as `from`/`to`
func dateRange(c echo.Context) (*time.Time, *time.Time, error) {
	from, err := parseOptionalDate("from_date", queryParam(c, "from_date", "from"))
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalDate("to_date", queryParam(c, "to_date", "to"))
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
