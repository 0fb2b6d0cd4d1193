package bhavcopy

import (
	"context"
	"fmt"
	"time"

	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// DefaultHorizon is the number of calendar days scanned for the latest table
const DefaultHorizon = 5

// FetchFunc loads the table for one trading date
type FetchFunc func(ctx context.Context, date time.Time) (*Table, error)

// ResolveLatest tries start, start-1 day, ... start-(horizon-1) days in order
// and returns the first non-empty table with its date. A failing date is
// skipped, not retried.
func ResolveLatest(ctx context.Context, start time.Time, horizon int, fetch FetchFunc) (*Table, time.Time, error) {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	for back := 0; back < horizon; back++ {
		if err := ctx.Err(); err != nil {
			return nil, time.Time{}, err
		}
		date := start.AddDate(0, 0, -back)
		t, err := fetch(ctx, date)
		if err != nil {
			zaplogger.Debug("look-back date skipped", zaplogger.Fields{
				"date":  date.Format(DateLayout),
				"error": err.Error(),
			})
			continue
		}
		if t.Empty() {
			continue
		}
		return t, date, nil
	}
	return nil, time.Time{}, fmt.Errorf("%w: %d days from %s", ErrNotFound, horizon, start.Format(DateLayout))
}
