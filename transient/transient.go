// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"

	"github.com/gogama/netreq/request"
	"github.com/gogama/netreq/timeout"
)

// A Category is the category of a particular transfer error, as reported
// by function Categorize().
//
// The category Not means the error is not transient, or in other words
// that a retry after encountering this error is very unlikely to succeed.
// Aborted is not transient either: the transfer was stopped on purpose.
//
// The remaining categories indicate the error is transient, so a later
// attempt has some prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout, most commonly the
	// connection timeout of the timeout policy.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	ConnReset
	// LowSpeed indicates the transfer was aborted because it stayed
	// below the low-speed limit of the timeout policy.
	LowSpeed
	// Aborted indicates the transfer was stopped by a cancellation,
	// either of the request itself or of the whole manager.
	Aborted
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"LowSpeed",
	"Aborted",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Transient reports whether the category indicates a transient error.
func (c Category) Transient() bool {
	return c != Not && c != Aborted
}

// Categorize returns the category of the given error. A nil error
// produces Not.
//
// In assessing the category, Categorize looks at wrapped cause errors
// contained within err, not just err itself. LowSpeed and Aborted take
// precedence over Timeout, since a transport may surface those through
// an error which also reports a timeout.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	if errors.Is(err, timeout.ErrLowSpeed) {
		return LowSpeed
	}

	if errors.Is(err, request.ErrAborted) || errors.Is(err, context.Canceled) {
		return Aborted
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
