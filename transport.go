// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogama/netreq/timeout"
)

// DefaultProgressInterval is how often HTTPTransport calls the progress
// hook when no data arrives.
const DefaultProgressInterval = 250 * time.Millisecond

// maxPrealloc bounds how much of a declared Content-Length is allocated
// up front.
const maxPrealloc = 8 << 20

// A ProgressFunc receives transfer progress from a Transport. The byte
// counts never decrease between calls, and a total of zero means the
// size is not known.
//
// Returning a non-nil error aborts the transfer, and the Transport then
// fails with that error.
type ProgressFunc func(downloaded, downloadTotal, uploaded, uploadTotal int64) error

// A Transfer describes one blocking HTTP exchange for a Transport.
type Transfer struct {
	// Method is the HTTP method. An empty method means POST when Body
	// is non-empty, and GET otherwise.
	Method string
	// URL is the endpoint to contact.
	URL string
	// Body is the form-encoded request body. It may be empty.
	Body string
	// Policy is the timeout policy the transport must enforce.
	Policy timeout.Policy
	// Progress, if not nil, is called zero or more times during the
	// transfer.
	Progress ProgressFunc
}

// Response is the outcome of a completed transfer. A completed transfer
// is one where the HTTP exchange finished, whatever its status code.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// A Transport performs the byte-level work of a transfer.
//
// Transfer blocks until the exchange completes, fails, or is aborted by
// the progress hook or ctx. Implementations must be safe for concurrent
// use by multiple goroutines.
type Transport interface {
	Transfer(ctx context.Context, t *Transfer) (*Response, error)
}

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

// HTTPTransport is a Transport on top of an HTTPDoer. Its zero value is
// a valid configuration which uses http.DefaultClient.
//
// The connection timeout is measured from the start of the transfer to
// the moment a connection is obtained, as reported through
// net/http/httptrace. For an HTTPDoer which does not report connection
// events, it bounds the time until response headers arrive instead.
//
// The progress hook is called once before the request is sent, every
// ProgressInterval until the transfer ends, after each read, and once
// more before Transfer returns successfully. The low-speed check starts
// once connected. The average rate over
// every ProgressInterval is compared to the policy's limit, and the
// transfer is aborted with timeout.ErrLowSpeed once it stayed slow for
// the policy's LowSpeedTime.
type HTTPTransport struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient is used.
	HTTPDoer HTTPDoer
	// ProgressInterval is how often the progress hook is called and
	// the transfer rate is measured while waiting for data.
	//
	// If ProgressInterval is zero, DefaultProgressInterval is used.
	ProgressInterval time.Duration
}

// DefaultTransport is the Transport used by requests which do not set
// one.
var DefaultTransport Transport = &HTTPTransport{}

// Transfer performs the exchange described by x and returns the fully
// buffered response. Any returned error is of type *url.Error.
func (t *HTTPTransport) Transfer(ctx context.Context, x *Transfer) (*Response, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	method := x.Method
	if method == "" {
		method = http.MethodGet
		if x.Body != "" {
			method = http.MethodPost
		}
	}
	var body io.Reader
	if x.Body != "" {
		body = strings.NewReader(x.Body)
	}

	m := newMeter(x, cancel)
	ctx = httptrace.WithClientTrace(ctx, m.trace())
	req, err := http.NewRequestWithContext(ctx, method, x.URL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	m.start(t.interval())
	defer m.stop()

	// A hook that already wants out never reaches the network.
	if err = m.tick(); err != nil {
		return nil, urlErrorWrap(req, err)
	}

	resp, err := t.doer().Do(req)
	if err != nil {
		return nil, urlErrorWrap(req, cause(ctx, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	m.responded(resp.ContentLength)

	var buf bytes.Buffer
	if resp.ContentLength > 0 && resp.ContentLength <= maxPrealloc {
		buf.Grow(int(resp.ContentLength))
	}
	p := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(p)
		if n > 0 {
			buf.Write(p[:n])
			m.downloaded.Add(int64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, urlErrorWrap(req, cause(ctx, rerr))
		}
		if err = m.tick(); err != nil {
			return nil, urlErrorWrap(req, err)
		}
	}
	// The final Read may return data together with io.EOF, so the hook
	// gets one last say before the transfer counts as a success.
	if err = m.tick(); err != nil {
		return nil, urlErrorWrap(req, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       buf.Bytes(),
	}, nil
}

func (t *HTTPTransport) doer() HTTPDoer {
	if t.HTTPDoer == nil {
		return http.DefaultClient
	}

	return t.HTTPDoer
}

func (t *HTTPTransport) interval() time.Duration {
	if t.ProgressInterval <= 0 {
		return DefaultProgressInterval
	}

	return t.ProgressInterval
}

// meter tracks the byte counts of one transfer, calls its progress hook,
// and enforces its timeout policy.
type meter struct {
	x           *Transfer
	cancel      context.CancelCauseFunc
	uploadTotal int64

	downloaded atomic.Int64
	total      atomic.Int64
	uploaded   atomic.Int64
	connected  atomic.Bool

	mu      sync.Mutex
	stopped bool
	err     error

	connectTimer *time.Timer
	done         chan struct{}
	wg           sync.WaitGroup
}

func newMeter(x *Transfer, cancel context.CancelCauseFunc) *meter {
	return &meter{
		x:           x,
		cancel:      cancel,
		uploadTotal: int64(len(x.Body)),
		done:        make(chan struct{}),
	}
}

func (m *meter) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) {
			m.connect()
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				m.uploaded.Store(m.uploadTotal)
			}
		},
	}
}

func (m *meter) start(interval time.Duration) {
	if d := m.x.Policy.ConnectTimeout; d > 0 {
		m.connectTimer = time.AfterFunc(d, func() {
			m.abort(timeout.ErrConnectTimeout)
		})
	}
	m.wg.Add(1)
	go m.watch(interval)
}

func (m *meter) connect() {
	if m.connected.CompareAndSwap(false, true) && m.connectTimer != nil {
		m.connectTimer.Stop()
	}
}

func (m *meter) responded(contentLength int64) {
	m.connect()
	m.uploaded.Store(m.uploadTotal)
	if contentLength > 0 {
		m.total.Store(contentLength)
	}
}

func (m *meter) watch(interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	policy := m.x.Policy
	last := time.Now()
	var lastBytes int64
	var slowSince time.Time
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			n := m.downloaded.Load()
			if m.connected.Load() {
				if policy.Slow(n-lastBytes, now.Sub(last)) {
					if slowSince.IsZero() {
						slowSince = last
					}
					if now.Sub(slowSince) >= policy.LowSpeedTime {
						m.abort(timeout.ErrLowSpeed)
						return
					}
				} else {
					slowSince = time.Time{}
				}
			}
			last, lastBytes = now, n
			// The hook runs while connecting too, so a cancellation
			// does not wait for the connection.
			if m.tick() != nil {
				return
			}
		}
	}
}

// tick calls the progress hook. Calls are serialized, so the hook always
// sees non-decreasing counts.
func (m *meter) tick() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.stopped || m.x.Progress == nil {
		return nil
	}
	err := m.x.Progress(m.downloaded.Load(), m.total.Load(), m.uploaded.Load(), m.uploadTotal)
	if err != nil {
		m.err = err
		m.cancel(err)
	}
	return err
}

func (m *meter) abort(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil && !m.stopped {
		m.err = err
		m.cancel(err)
	}
}

func (m *meter) stop() {
	if m.connectTimer != nil {
		m.connectTimer.Stop()
	}
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	close(m.done)
	m.wg.Wait()
}

// cause prefers the reason ctx was cancelled over the error it caused.
func cause(ctx context.Context, err error) error {
	if c := context.Cause(ctx); c != nil {
		return c
	}

	return err
}

func urlErrorWrap(req *http.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(req.Method),
		URL: req.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
