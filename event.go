// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

// An Event identifies the event type when installing or running a
// Handler. Install event handlers on an HTTPRequest to observe or extend
// its execution.
type Event int

const (
	// BeforeOperation identifies the event that occurs in the before
	// phase of the request, on the worker goroutine, before the transfer
	// starts.
	BeforeOperation Event = iota
	// AfterTransfer identifies the event that occurs once the outcome of
	// the transfer is final, whether it succeeded or not. For most
	// requests this is as soon as the transport returns; a
	// DownloadRequest first stores the body.
	//
	// When AfterTransfer fires, the request's progress already holds a
	// terminal value, and either Err is non-nil or Body holds the raw
	// response body. A DownloadRequest never keeps the body in memory,
	// and an XMLRequest has not yet interpreted it.
	AfterTransfer
	// AfterOperation identifies the event that occurs in the after
	// phase of the request, once every request layer has computed its
	// result, immediately before the request is marked done.
	//
	// AfterOperation handlers play the role of completion callbacks.
	// Since Done still reports false while they run, they must not wait
	// for it.
	AfterOperation
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeOperation",
	"AfterTransfer",
	"AfterOperation",
}

// Events returns a slice containing all events which can occur in an
// HTTP request execution, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeOperation,
		AfterTransfer,
		AfterOperation,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
