package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/fetcher"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testToday }

func day(s string) time.Time {
	t, err := time.Parse(bhavcopy.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustTable(t *testing.T, csv string, rules bhavcopy.CleanRules) *bhavcopy.Table {
	t.Helper()
	raw, err := bhavcopy.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	cleaned, err := bhavcopy.Clean(raw, rules)
	require.NoError(t, err)
	return cleaned
}

// fakeSource serves tables by date and counts calls
type fakeSource struct {
	mu          sync.Mutex
	equity      map[string]*bhavcopy.Table
	derivatives map[string]*bhavcopy.Table
	calls       map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		equity:      map[string]*bhavcopy.Table{},
		derivatives: map[string]*bhavcopy.Table{},
		calls:       map[string]int{},
	}
}

func (f *fakeSource) get(kind string, tables map[string]*bhavcopy.Table, date time.Time) (*bhavcopy.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := date.Format(bhavcopy.DateLayout)
	f.calls[kind+":"+key]++
	if t, ok := tables[key]; ok {
		return t, nil
	}
	return nil, fetcher.ErrNotFound
}

func (f *fakeSource) Equity(ctx context.Context, date time.Time) (*bhavcopy.Table, error) {
	return f.get("cm", f.equity, date)
}

func (f *fakeSource) Derivatives(ctx context.Context, date time.Time) (*bhavcopy.Table, error) {
	return f.get("fo", f.derivatives, date)
}

func (f *fakeSource) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

// fakeGetter answers fetcher requests by URL
type fakeGetter struct {
	mu     sync.Mutex
	bodies map[string][]byte
	err    error
	reqs   []fetcher.Request
}

func (f *fakeGetter) Get(ctx context.Context, req fetcher.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if body, ok := f.bodies[req.URL]; ok {
		return body, nil
	}
	return nil, fetcher.ErrNotFound
}
