package util_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/mangascout/internal/util"
)

func TestCookieHeader(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(file, []byte("\n  session=abc  \nignored=1\n"), 0644))

	assert.Equal(t, "a=1", util.CookieHeader(" a=1 ", ""))
	assert.Equal(t, "session=abc", util.CookieHeader("", file))
	assert.Equal(t, "a=1; session=abc", util.CookieHeader("a=1", file))
	assert.Equal(t, "a=1", util.CookieHeader("a=1", filepath.Join(t.TempDir(), "missing")))
}

func TestClientSetsHeaders(t *testing.T) {
	var ua, cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		cookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	c := util.NewHTTPClient(util.HTTPClientOptions{Timeout: time.Second, UserAgent: "scout/1", Cookie: "k=v"})
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "scout/1", ua)
	assert.Equal(t, "k=v", cookie)
}

func TestDoWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := util.DoWithRetry(srv.Client(), req, 3, time.Millisecond)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(0)
	_, err = util.DoWithRetry(srv.Client(), req, 2, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503 after 2 attempts")
}

func TestDoWithRetryHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = util.DoWithRetry(srv.Client(), req, 5, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPickUserAgent(t *testing.T) {
	assert.Equal(t, util.DefaultUserAgent, util.PickUserAgent(""))
	assert.Equal(t, "x", util.PickUserAgent("x"))
}
