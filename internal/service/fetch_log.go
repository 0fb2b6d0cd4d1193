package service

import (
	"errors"

	"github.com/nsvirk/bhavapi/internal/fetcher"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// logFetchError logs expected misses at debug and everything else at warn
func logFetchError(what, date string, err error) {
	fields := zaplogger.Fields{"source": what, "date": date, "error": err.Error()}
	if errors.Is(err, fetcher.ErrNotFound) {
		zaplogger.Debug("no upstream data", fields)
		return
	}
	zaplogger.Warn("upstream fetch failed", fields)
}
