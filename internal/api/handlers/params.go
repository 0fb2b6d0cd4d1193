// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// inputError is a malformed request parameter
type inputError struct {
	message string
}

func (e *inputError) Error() string { return e.message }

func inputErrorf(format string, args ...any) error {
	return &inputError{message: fmt.Sprintf(format, args...)}
}

// queryParam returns the first non-empty query value among names
func queryParam(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := c.QueryParam(name); v != "" {
			return v
		}
	}
	return ""
}

func parseDate(name, value string) (time.Time, error) {
	d, err := time.Parse(bhavcopy.DateLayout, value)
	if err != nil {
		return time.Time{}, inputErrorf("Invalid `%s` %q, expected YYYY-MM-DD", name, value)
	}
	return d, nil
}

// parseOptionalDate returns nil for an empty value
func parseOptionalDate(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDate(name, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseIntInRange parses value, using def when empty, and checks [min, max]. max <= 0 means unbounded.
func parseIntInRange(name, value string, def, min, max int) (int, error) {
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < min || (max > 0 && n > max) {
		if max > 0 {
			return 0, inputErrorf("`%s` must be an integer between %d and %d", name, min, max)
		}
		return 0, inputErrorf("`%s` must be an integer >= %d", name, min)
	}
	return n, nil
}

// errorResponse maps an error to the response envelope
func errorResponse(c echo.Context, err error) error {
	var inErr *inputError
	switch {
	case errors.As(err, &inErr):
		return response.InputError(c, inErr.message)
	case errors.Is(err, service.ErrNoData):
		return response.NotFoundError(c, err.Error())
	default:
		zaplogger.Error("request failed", zaplogger.Fields{
			"path":  c.Path(),
			"error": err.Error(),
		})
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, err.Error())
	}
}
