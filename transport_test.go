// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gogama/netreq/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Transfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			b, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Method", r.Method)
			w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
			_, _ = w.Write(b)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("nope"))
		default:
			_, _ = w.Write([]byte("hello"))
		}
	}))
	defer server.Close()
	tr := &HTTPTransport{ProgressInterval: 10 * time.Millisecond}

	t.Run("GET", func(t *testing.T) {
		var last [4]int64
		resp, err := tr.Transfer(context.Background(), &Transfer{
			URL:    server.URL + "/echo",
			Policy: timeout.DefaultPolicy,
			Progress: func(downloaded, downloadTotal, uploaded, uploadTotal int64) error {
				cur := [4]int64{downloaded, downloadTotal, uploaded, uploadTotal}
				for i := range cur {
					assert.GreaterOrEqual(t, cur[i], last[i])
				}
				last = cur
				return nil
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, http.MethodGet, resp.Header.Get("X-Method"))
		assert.Empty(t, resp.Body)
	})
	t.Run("POST", func(t *testing.T) {
		resp, err := tr.Transfer(context.Background(), &Transfer{
			URL:  server.URL + "/echo",
			Body: "a=1&b=x%20y",
		})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, resp.Header.Get("X-Method"))
		assert.Equal(t, "application/x-www-form-urlencoded", resp.Header.Get("X-Content-Type"))
		assert.Equal(t, "a=1&b=x%20y", string(resp.Body))
	})
	t.Run("explicit method", func(t *testing.T) {
		resp, err := tr.Transfer(context.Background(), &Transfer{
			Method: http.MethodPut,
			URL:    server.URL + "/echo",
			Body:   "k=v",
		})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, resp.Header.Get("X-Method"))
	})
	t.Run("non-2XX status", func(t *testing.T) {
		resp, err := tr.Transfer(context.Background(), &Transfer{URL: server.URL + "/missing"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "nope", string(resp.Body))
	})
	t.Run("bad URL", func(t *testing.T) {
		_, err := tr.Transfer(context.Background(), &Transfer{URL: "http://[::1"})
		assert.Error(t, err)
	})
	t.Run("parent cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := tr.Transfer(ctx, &Transfer{URL: server.URL})
		var urlErr *url.Error
		require.ErrorAs(t, err, &urlErr)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPTransport_Abort(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	t.Run("progress hook", func(t *testing.T) {
		stop := errors.New("stop")
		tr := &HTTPTransport{ProgressInterval: 10 * time.Millisecond}
		_, err := tr.Transfer(context.Background(), &Transfer{
			URL: server.URL,
			Progress: func(downloaded, _, _, _ int64) error {
				if downloaded > 0 {
					return stop
				}
				return nil
			},
		})
		var urlErr *url.Error
		require.ErrorAs(t, err, &urlErr)
		assert.ErrorIs(t, err, stop)
	})
	t.Run("low speed", func(t *testing.T) {
		tr := &HTTPTransport{ProgressInterval: 10 * time.Millisecond}
		start := time.Now()
		_, err := tr.Transfer(context.Background(), &Transfer{
			URL:    server.URL,
			Policy: timeout.Infinite.WithLowSpeed(1000, 50*time.Millisecond),
		})
		assert.ErrorIs(t, err, timeout.ErrLowSpeed)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}

func TestHTTPTransport_HookCalls(t *testing.T) {
	stop := errors.New("stop")

	t.Run("before sending", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("hello"))
		}))
		defer server.Close()
		tr := &HTTPTransport{ProgressInterval: time.Hour}

		resp, err := tr.Transfer(context.Background(), &Transfer{
			URL:      server.URL,
			Progress: func(_, _, _, _ int64) error { return stop },
		})

		assert.Nil(t, resp)
		var urlErr *url.Error
		require.ErrorAs(t, err, &urlErr)
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, int32(0), hits.Load())
	})
	t.Run("while connecting", func(t *testing.T) {
		var quit atomic.Bool
		tr := &HTTPTransport{
			HTTPDoer:         slowDoer{delay: 5 * time.Second},
			ProgressInterval: 10 * time.Millisecond,
		}
		time.AfterFunc(50*time.Millisecond, func() { quit.Store(true) })
		start := time.Now()

		resp, err := tr.Transfer(context.Background(), &Transfer{
			URL:    "http://example.com",
			Policy: timeout.Infinite,
			Progress: func(_, _, _, _ int64) error {
				if quit.Load() {
					return stop
				}
				return nil
			},
		})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, stop)
		assert.Less(t, time.Since(start), time.Second)
	})
	t.Run("after last read", func(t *testing.T) {
		tr := &HTTPTransport{
			HTTPDoer: doerFunc(func(r *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode:    http.StatusOK,
					ContentLength: 5,
					Body:          io.NopCloser(iotest.DataErrReader(strings.NewReader("hello"))),
				}, nil
			}),
			ProgressInterval: time.Hour,
		}
		var calls []int64

		resp, err := tr.Transfer(context.Background(), &Transfer{
			URL: "http://example.com",
			Progress: func(downloaded, _, _, _ int64) error {
				calls = append(calls, downloaded)
				if downloaded > 0 {
					return stop
				}
				return nil
			},
		})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, []int64{0, 5}, calls)
	})
}

func TestHTTPTransport_ConnectTimeout(t *testing.T) {
	tr := &HTTPTransport{
		HTTPDoer: blockingDoer{},
	}
	start := time.Now()
	_, err := tr.Transfer(context.Background(), &Transfer{
		URL:    "http://example.com",
		Policy: timeout.Fixed(20 * time.Millisecond),
	})
	assert.ErrorIs(t, err, timeout.ErrConnectTimeout)
	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.True(t, urlErr.Timeout())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestUrlErrorOp(t *testing.T) {
	assert.Equal(t, "Get", urlErrorOp(""))
	assert.Equal(t, "Get", urlErrorOp("GET"))
	assert.Equal(t, "Post", urlErrorOp("POST"))
}

// blockingDoer never connects. It waits until the request is cancelled.
type blockingDoer struct{}

func (blockingDoer) Do(r *http.Request) (*http.Response, error) {
	<-r.Context().Done()
	return nil, r.Context().Err()
}

// slowDoer takes delay to connect unless the request is cancelled first.
// Either way it then returns a response, as a doer which ignores
// cancellation would.
type slowDoer struct {
	delay time.Duration
}

func (d slowDoer) Do(r *http.Request) (*http.Response, error) {
	select {
	case <-r.Context().Done():
	case <-time.After(d.delay):
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("late")),
	}, nil
}

type doerFunc func(r *http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}
