package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(WithPoliteDelay(0), WithFetchTimeout(2*time.Second), WithPrimeTimeout(2*time.Second))
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/zip", r.Header.Get("Accept"))
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	body, err := newTestClient().Get(context.Background(), Request{URL: srv.URL, Header: NSEArchiveHeaders()})
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrTransient))
}

func TestGet_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))

	var te *TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
}

func TestGet_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Get(context.Background(), Request{URL: url})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))
}

func TestGet_PrimingSetsCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("nsit")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	body, err := newTestClient().Get(context.Background(), Request{
		URL:      srv.URL + "/api",
		PrimeURL: srv.URL + "/home",
		Header:   NSEAPIHeaders(),
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestGet_CookiesNotSharedBetweenCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("nsit"); err == nil {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient()
	_, err := c.Get(context.Background(), Request{URL: srv.URL + "/api", PrimeURL: srv.URL + "/home"})
	require.Error(t, err)

	body, err := c.Get(context.Background(), Request{URL: srv.URL + "/api"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestGet_PoliteDelaySpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(WithPoliteDelay(100 * time.Millisecond))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), Request{URL: srv.URL})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 180*time.Millisecond)
}

func TestGet_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().Get(ctx, Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))
}
