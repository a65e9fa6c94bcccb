// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

// A HandlerGroup holds one handler chain per Event. Installed as the
// Handlers of an HTTPRequest, its chains run on the worker goroutine at
// the three points of an execution: BeforeOperation before the transfer
// starts, AfterTransfer once the transfer outcome and the terminal
// progress value are settled, and AfterOperation once the request's
// result is computed, just before Done turns true.
//
// The zero value is an empty group. A group must not be modified while a
// request using it executes.
type HandlerGroup struct {
	chains [numEvents][]Handler
}

// PushBack appends h to the chain for evt, so it runs after every
// handler already installed for that event. It panics if h is nil or evt
// is not one of the values returned by Events.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("netreq: nil handler")
	}
	if evt < 0 || int(evt) >= numEvents {
		panic("netreq: invalid event")
	}

	g.chains[evt] = append(g.chains[evt], h)
}

// run invokes the chain for evt in order. A nil group runs nothing.
func (g *HandlerGroup) run(evt Event, r *HTTPRequest) {
	if g == nil {
		return
	}
	for _, h := range g.chains[evt] {
		h.Handle(evt, r)
	}
}

// A Handler observes one phase of a request execution. For an
// XMLRequest or a DownloadRequest, r is the embedded HTTPRequest.
//
// Handlers run synchronously on the worker goroutine executing the
// request, so a slow handler delays the worker and every request queued
// behind it.
type Handler interface {
	Handle(evt Event, r *HTTPRequest)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(Event, *HTTPRequest)

// Handle calls f(evt, r).
func (f HandlerFunc) Handle(evt Event, r *HTTPRequest) {
	f(evt, r)
}
