// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gogama/netreq/request"
	"github.com/gogama/netreq/timeout"
	"github.com/gogama/netreq/transient"
)

// An HTTPRequest is a request whose operation is one HTTP transfer. It
// reports progress while the transfer runs and keeps the raw response
// body once it is done.
//
// Configure the exported fields before adding the request to a Manager;
// they must not change afterwards. Results (Body, StatusCode, Err) are
// valid only once Done reports true.
type HTTPRequest struct {
	*request.Base

	// URL is the endpoint to contact.
	URL string
	// Params holds the form parameters. The request is a POST when
	// Params is non-empty, and a GET otherwise.
	Params Params
	// Policy is the timeout policy of the transfer. NewHTTPRequest sets
	// it to timeout.DefaultPolicy.
	Policy timeout.Policy
	// Transport performs the transfer. If Transport is nil,
	// DefaultTransport is used.
	Transport Transport
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during execution of the request.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Callback, if not nil, is called on the worker goroutine in the
	// after phase, after every AfterOperation handler and immediately
	// before the request is marked done.
	Callback func()

	progress    request.Progress
	transferred atomic.Int64

	body       []byte
	statusCode int
	header     http.Header
	err        error
}

// NewHTTPRequest returns a caller-owned request for url with the default
// priority.
func NewHTTPRequest(url string) *HTTPRequest {
	return NewHTTPRequestWithPriority(url, request.PriorityDefault, false)
}

// NewHTTPRequestWithPriority returns a request for url with the given
// priority and memory policy. If manageMemory is true, the Manager
// releases the request as soon as it is done, so the caller should only
// observe it through Callback or handlers.
func NewHTTPRequestWithPriority(url string, priority int, manageMemory bool) *HTTPRequest {
	r := &HTTPRequest{
		URL:    url,
		Policy: timeout.DefaultPolicy,
	}
	r.Base = request.NewBase(priority, manageMemory, request.Hooks{
		Before:    r.beforeOperation,
		Operation: r.operation,
		After:     r.afterOperation,
	})
	return r
}

// AllowedToAdd is a cheap pre-flight check a Manager runs before
// accepting the request. It refuses any URL longer than five characters
// which does not start with "http:". Shorter URLs pass.
func (r *HTTPRequest) AllowedToAdd() bool {
	if len(r.URL) > 5 && r.URL[:5] != "http:" {
		return false
	}
	return true
}

// Progress returns the progress of the request: a fraction in [0, 1)
// while the transfer runs, 1 once it succeeded, and -1 if it failed.
func (r *HTTPRequest) Progress() float64 {
	return r.progress.Load()
}

// Transferred returns how many response bytes have been received so far.
func (r *HTTPRequest) Transferred() int64 {
	return r.transferred.Load()
}

// Body returns the raw response body. It is empty if the transfer
// failed.
func (r *HTTPRequest) Body() []byte {
	return r.body
}

// StatusCode returns the HTTP status code of the response, or 0 if the
// transfer failed.
func (r *HTTPRequest) StatusCode() int {
	return r.statusCode
}

// Header returns the HTTP response header, or nil if the transfer
// failed.
func (r *HTTPRequest) Header() http.Header {
	return r.header
}

// Err returns the error which ended the transfer, or nil if it
// succeeded. A non-2XX status code is not an error.
func (r *HTTPRequest) Err() error {
	return r.err
}

// Release drops the response body. A Manager calls it on requests it
// owns once they are done.
func (r *HTTPRequest) Release() {
	r.body = nil
	r.header = nil
}

func (r *HTTPRequest) beforeOperation(_ context.Context) {
	r.Handlers.run(BeforeOperation, r)
}

func (r *HTTPRequest) operation(ctx context.Context) {
	r.body = r.download(ctx)
	r.settle(r.err == nil)
}

func (r *HTTPRequest) afterOperation(_ context.Context) {
	r.Handlers.run(AfterOperation, r)
	if r.Callback != nil {
		r.Callback()
	}
}

// download performs the transfer and returns the response body, or nil
// if it failed. It leaves progress in flight: the caller decides when the
// outcome is final and calls settle.
func (r *HTTPRequest) download(ctx context.Context) []byte {
	x := &Transfer{
		URL:      r.URL,
		Body:     r.Params.Encode(),
		Policy:   r.Policy,
		Progress: r.progressHook(ctx),
	}
	log.Debugf("%s: sending to %s", r, r.URL)

	resp, err := r.transport().Transfer(ctx, x)
	if err != nil {
		r.err = err
		log.Errorf("%s: transfer failed (%s): %v", r, transient.Categorize(err), err)
		return nil
	}

	r.statusCode = resp.StatusCode
	r.header = resp.Header
	r.transferred.Store(int64(len(resp.Body)))
	log.Infof("%s: received %d bytes (status %d)", r, len(resp.Body), resp.StatusCode)
	return resp.Body
}

// settle sets the terminal progress and fires AfterTransfer.
func (r *HTTPRequest) settle(ok bool) {
	if ok {
		r.progress.Succeed()
	} else {
		r.progress.Fail()
	}
	r.Handlers.run(AfterTransfer, r)
}

// progressHook returns the progress function for one transfer. It aborts
// the transfer once ctx is cancelled (the Manager aborting) or the
// request itself is cancelled.
func (r *HTTPRequest) progressHook(ctx context.Context) ProgressFunc {
	return func(downloaded, downloadTotal, _, _ int64) error {
		if ctx.Err() != nil || r.Cancelled() {
			return request.ErrAborted
		}
		r.transferred.Store(downloaded)
		r.progress.Advance(fraction(downloaded, downloadTotal))
		return nil
	}
}

func (r *HTTPRequest) transport() Transport {
	if r.Transport == nil {
		return DefaultTransport
	}

	return r.Transport
}

// fraction converts byte counts into in-flight progress. It never
// returns 1: Complete is reserved for a transfer confirmed successful.
//
// A known total gives now/total, capped at 0.99 once now reaches it. An
// unknown total (zero) gives 0 however many bytes have arrived, so a
// download of unknown size never looks almost finished.
func fraction(now, total int64) float64 {
	if total > 0 && now < total {
		f := float64(now) / float64(total)
		if f >= request.Complete {
			f = request.InFlightMax
		}
		return f
	}
	if total <= 0 {
		return 0
	}
	return request.InFlightMax
}
