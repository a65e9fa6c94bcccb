// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	// PriorityDefault is the priority given to ordinary network
	// requests.
	PriorityDefault = 1
	// PriorityQuit is the reserved maximal priority. Only QuitRequest
	// uses it, so that a shutdown overtakes every queued request.
	PriorityQuit = 9999
)

// ErrAborted is the error recorded on an operation which stopped early
// because its request, or the dispatcher running it, was cancelled.
var ErrAborted = errors.New("netreq/request: aborted")

// A Request is a unit of deferred, possibly long-running network work.
//
// A dispatcher runs Execute exactly once, on a single worker goroutine.
// All other methods are safe to call from any goroutine at any time.
type Request interface {
	// ID returns a unique identifier of the request, used to correlate
	// log lines.
	ID() string
	// Priority returns the priority fixed at construction. Higher
	// priorities are dequeued first.
	Priority() int
	// ManageMemory reports whether the dispatcher, rather than the
	// caller, owns the request once it is done.
	ManageMemory() bool
	// Execute runs the request's before, operation and after phases
	// and then marks it done.
	Execute(ctx context.Context)
	// Cancel asks the operation to stop early.
	Cancel()
	// Cancelled reports whether Cancel was called.
	Cancelled() bool
	// Done reports whether Execute has finished.
	Done() bool
}

// Hooks holds the three phases of a request execution. A nil hook is a
// no-op.
type Hooks struct {
	Before    func(ctx context.Context)
	Operation func(ctx context.Context)
	After     func(ctx context.Context)
}

// Base implements the lifecycle shared by all requests. Concrete request
// types embed a *Base and install their phases with SetHooks.
type Base struct {
	id           string
	priority     int
	manageMemory bool
	hooks        Hooks

	started   atomic.Bool
	added     atomic.Bool
	cancelled atomic.Bool
	done      atomic.Bool
}

// NewBase returns a request lifecycle with the given priority, memory
// policy and phases.
func NewBase(priority int, manageMemory bool, hooks Hooks) *Base {
	return &Base{
		id:           uuid.NewString(),
		priority:     priority,
		manageMemory: manageMemory,
		hooks:        hooks,
	}
}

// SetHooks replaces the phases of the request. It is meant for
// constructors of request types layered on top of another request type,
// and must not be called once the request has been handed to a
// dispatcher.
func (b *Base) SetHooks(h Hooks) {
	if b.started.Load() {
		panic("netreq/request: SetHooks after Execute")
	}
	b.hooks = h
}

// ID returns the unique identifier of the request.
func (b *Base) ID() string {
	return b.id
}

// Priority returns the priority of the request.
func (b *Base) Priority() int {
	return b.priority
}

// ManageMemory reports whether the dispatcher owns the request once it
// is done.
func (b *Base) ManageMemory() bool {
	return b.manageMemory
}

// Execute runs the before, operation and after phases in order and then
// marks the request done. Only the first call has any effect.
func (b *Base) Execute(ctx context.Context) {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	defer b.done.Store(true)
	run(ctx, b.hooks.Before)
	run(ctx, b.hooks.Operation)
	run(ctx, b.hooks.After)
}

func run(ctx context.Context, hook func(context.Context)) {
	if hook != nil {
		hook(ctx)
	}
}

// Cancel sets the cancellation flag. The flag is never reset.
func (b *Base) Cancel() {
	b.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (b *Base) Cancelled() bool {
	return b.cancelled.Load()
}

// Done reports whether Execute has finished.
func (b *Base) Done() bool {
	return b.done.Load()
}

// Started reports whether Execute has been called.
func (b *Base) Started() bool {
	return b.started.Load()
}

// MarkAdded records that the request was accepted by a dispatcher. It
// returns false if the request had already been added, so a dispatcher
// can refuse to enqueue the same request twice.
func (b *Base) MarkAdded() bool {
	return b.added.CompareAndSwap(false, true)
}

// String returns a short description of the request for logging.
func (b *Base) String() string {
	return fmt.Sprintf("request %s (priority %d)", b.id, b.priority)
}

// QuitRequest is the sentinel request which tells a dispatcher worker to
// stop. It has the reserved maximal priority, its dispatcher owns it,
// and executing it does nothing.
type QuitRequest struct {
	*Base
}

// NewQuit returns a new sentinel request.
func NewQuit() *QuitRequest {
	return &QuitRequest{Base: NewBase(PriorityQuit, true, Hooks{})}
}

// IsQuit reports whether r is a shutdown sentinel.
func IsQuit(r Request) bool {
	_, ok := r.(*QuitRequest)
	return ok
}
