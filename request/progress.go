// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"math"
	"sync/atomic"
)

const (
	// Failed is the terminal progress value of a failed operation.
	Failed = -1.0
	// Complete is the terminal progress value of a successful operation.
	// No in-flight progress ever reaches it.
	Complete = 1.0
	// InFlightMax is the largest progress value reported while an
	// operation is still running.
	InFlightMax = 0.99
)

// Progress is an atomic progress value in [-1, 1]. Values in [0, 1) are
// the in-flight fraction of the operation; Complete and Failed are
// terminal. The zero value is a valid progress of 0.
//
// Progress is written by the worker executing a request and may be read
// by any goroutine.
type Progress struct {
	bits atomic.Uint64
}

// Load returns the current progress value.
func (p *Progress) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Advance raises the in-flight progress to f, clamped into
// [0, InFlightMax]. Progress never moves backwards while in flight, and
// Advance has no effect once a terminal value has been set.
func (p *Progress) Advance(f float64) {
	if f > InFlightMax {
		f = InFlightMax
	}
	for {
		old := p.bits.Load()
		cur := math.Float64frombits(old)
		if cur < 0 || cur >= Complete || f <= cur {
			return
		}
		if p.bits.CompareAndSwap(old, math.Float64bits(f)) {
			return
		}
	}
}

// Succeed sets the terminal Complete value. It reports false, and has no
// effect, if a terminal value was already set.
func (p *Progress) Succeed() bool {
	return p.settle(Complete)
}

// Fail sets the terminal Failed value. It reports false, and has no
// effect, if a terminal value was already set.
func (p *Progress) Fail() bool {
	return p.settle(Failed)
}

func (p *Progress) settle(f float64) bool {
	for {
		old := p.bits.Load()
		cur := math.Float64frombits(old)
		if cur < 0 || cur >= Complete {
			return false
		}
		if p.bits.CompareAndSwap(old, math.Float64bits(f)) {
			return true
		}
	}
}

// Terminal reports whether the progress holds a terminal value.
func (p *Progress) Terminal() bool {
	f := p.Load()
	return f < 0 || f >= Complete
}
