// Package service contains the service layer of the API
package service

import (
	"errors"
	"fmt"
)

// ErrNoData is the collapsed form of every upstream fetch failure
var ErrNoData = errors.New("no data available")

// NoDataError names what could not be found
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string { return e.Message }

func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

func noData(format string, args ...any) error {
	return &NoDataError{Message: fmt.Sprintf(format, args...)}
}
