// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerGroup(t *testing.T) {
	var evts []string
	var reqs []*HTTPRequest
	h1 := &testHandler{seq: 1, evts: &evts, reqs: &reqs}
	h2 := &testHandler{seq: 2, evts: &evts, reqs: &reqs}
	g := &HandlerGroup{}
	t.Run("PushBack", func(t *testing.T) {
		assert.Panics(t, func() { g.PushBack(BeforeOperation, nil) })
		assert.Panics(t, func() { g.PushBack(Event(123), h1) })
		assert.Panics(t, func() { g.PushBack(Event(-1), h1) })
		g.PushBack(BeforeOperation, h1)
		g.PushBack(BeforeOperation, h2)
		g.PushBack(AfterOperation, h1)
	})
	t.Run("run", func(t *testing.T) {
		r1 := NewHTTPRequest("http://one")
		r2 := NewHTTPRequest("http://two")
		g.run(AfterTransfer, r1)
		assert.Empty(t, evts)
		assert.Empty(t, reqs)
		g.run(BeforeOperation, r1)
		assert.Equal(t, []string{"1.BeforeOperation", "2.BeforeOperation"}, evts)
		assert.Equal(t, []*HTTPRequest{r1, r1}, reqs)
		evts = evts[:0]
		reqs = reqs[:0]
		g.run(AfterOperation, r2)
		assert.Equal(t, []string{"1.AfterOperation"}, evts)
		assert.Equal(t, []*HTTPRequest{r2}, reqs)
	})
	t.Run("nil group", func(t *testing.T) {
		var nilGroup *HandlerGroup
		assert.NotPanics(t, func() { nilGroup.run(BeforeOperation, nil) })
	})
}

type testHandler struct {
	seq  int
	evts *[]string
	reqs *[]*HTTPRequest
}

func (h *testHandler) Handle(evt Event, r *HTTPRequest) {
	*h.evts = append(*h.evts, fmt.Sprintf("%d.%s", h.seq, evt))
	*h.reqs = append(*h.reqs, r)
}

func TestHandlerFunc(t *testing.T) {
	var _evt Event
	var _r *HTTPRequest
	var f = func(evt Event, r *HTTPRequest) {
		_evt = evt
		_r = r
	}
	h := HandlerFunc(f)
	r := NewHTTPRequest("http://example.com")
	h.Handle(AfterTransfer, r)

	assert.Equal(t, AfterTransfer, _evt)
	assert.Same(t, r, _r)
}
