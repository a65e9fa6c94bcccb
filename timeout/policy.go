// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"errors"
	"time"
)

// ErrConnectTimeout is the error a transport reports when a connection
// could not be established within the policy's connection timeout. It
// reports true from its Timeout method.
var ErrConnectTimeout error = connectTimeoutError{}

type connectTimeoutError struct{}

func (connectTimeoutError) Error() string {
	return "netreq/timeout: connection timeout"
}

func (connectTimeoutError) Timeout() bool {
	return true
}

// ErrLowSpeed is the error a transport reports when it aborts a transfer
// because the transfer rate stayed below the policy's low-speed limit for
// the whole low-speed window.
var ErrLowSpeed = errors.New("netreq/timeout: transfer below low-speed limit")

// A Policy defines the timeout policy a transport must enforce on an
// HTTP transfer.
//
// A Policy is a plain value and is safe for concurrent use by multiple
// goroutines.
type Policy struct {
	// ConnectTimeout bounds the connection-establishment phase of the
	// transfer. Zero means no connection timeout.
	ConnectTimeout time.Duration

	// LowSpeedLimit is the minimum average transfer rate, in bytes per
	// second, the transfer must sustain. Zero disables the low-speed
	// check.
	LowSpeedLimit int64

	// LowSpeedTime is how long the transfer may stay below LowSpeedLimit
	// before it is aborted. Zero disables the low-speed check.
	LowSpeedTime time.Duration
}

// DefaultPolicy is the default timeout policy. It uses a 20 second
// connection timeout, and aborts any transfer running below 10 bytes per
// second for 20 seconds. Being that slow for that long almost always means
// network access was lost.
var DefaultPolicy = Policy{
	ConnectTimeout: 20 * time.Second,
	LowSpeedLimit:  10,
	LowSpeedTime:   20 * time.Second,
}

// Infinite is a built-in policy which never times out.
var Infinite = Policy{}

// Fixed constructs a policy with the given connection timeout and no
// low-speed limit.
func Fixed(connect time.Duration) Policy {
	return Policy{ConnectTimeout: connect}
}

// WithLowSpeed returns a copy of p with the low-speed limit set to limit
// bytes per second over window.
func (p Policy) WithLowSpeed(limit int64, window time.Duration) Policy {
	p.LowSpeedLimit = limit
	p.LowSpeedTime = window
	return p
}

// LowSpeedEnabled reports whether the policy has an active low-speed
// check.
func (p Policy) LowSpeedEnabled() bool {
	return p.LowSpeedLimit > 0 && p.LowSpeedTime > 0
}

// Slow reports whether moving n bytes in elapsed is below the low-speed
// limit. It always reports false when the low-speed check is disabled.
//
// A transport aborts the transfer once every measurement over a
// continuous LowSpeedTime was slow.
func (p Policy) Slow(n int64, elapsed time.Duration) bool {
	if !p.LowSpeedEnabled() || elapsed <= 0 {
		return false
	}
	return float64(n)/elapsed.Seconds() < float64(p.LowSpeedLimit)
}
