// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gogama/netreq/request"
)

var (
	// ErrNotAllowed is returned by Manager.Add when a request fails its
	// own pre-flight check.
	ErrNotAllowed = errors.New("netreq: request not allowed")
	// ErrAlreadyAdded is returned by Manager.Add when the same request
	// was added before.
	ErrAlreadyAdded = errors.New("netreq: request already added")
	// ErrManagerClosed is returned by Manager.Add once Stop was called.
	ErrManagerClosed = errors.New("netreq: manager closed")
)

// An Admitter is a request with a pre-flight check. Manager.Add refuses
// a request whose AllowedToAdd returns false.
type Admitter interface {
	AllowedToAdd() bool
}

// A Releaser is a request holding memory which can be dropped once it is
// done. The Manager calls Release on requests it owns, that is requests
// whose ManageMemory is true, immediately after they finish.
type Releaser interface {
	Release()
}

type marker interface {
	MarkAdded() bool
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Workers is the number of worker goroutines executing requests. If
	// Workers is zero or negative, one worker is used.
	Workers int
	// RequestsPerSecond, if positive, limits how many requests the
	// workers start per second, across all workers.
	RequestsPerSecond float64
}

// Stats is a snapshot of a Manager's counters.
type Stats struct {
	Queued   int
	Executed int64
	Released int64
	Workers  int
}

// A Manager owns a priority queue of requests and a pool of workers
// executing them. The request with the highest priority is always
// dequeued first, and requests of equal priority are dequeued in the
// order they were added.
//
// Requests may be added before or after Start. A Manager cannot be
// restarted once stopped.
type Manager struct {
	opts    ManagerOptions
	ctx     context.Context
	cancel  context.CancelFunc
	limiter *rate.Limiter

	mu      sync.Mutex
	cond    *sync.Cond
	queue   requestQueue
	started bool
	closed  bool
	group   errgroup.Group

	executed atomic.Int64
	released atomic.Int64
}

// NewManager returns a stopped Manager. Call Start to launch its
// workers.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	m := &Manager{opts: opts}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.cond = sync.NewCond(&m.mu)
	if opts.RequestsPerSecond > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return m
}

// Add enqueues r. It fails with ErrNotAllowed if r implements Admitter
// and refuses itself, with ErrAlreadyAdded if r was added before, and
// with ErrManagerClosed once Stop has been called.
func (m *Manager) Add(r request.Request) error {
	if a, ok := r.(Admitter); ok && !a.AllowedToAdd() {
		log.Warnf("refusing %s: not allowed", r)
		return ErrNotAllowed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	if mk, ok := r.(marker); ok && !mk.MarkAdded() {
		return ErrAlreadyAdded
	}
	m.queue.push(r)
	log.Debugf("queued %s, queue size %d", r, m.queue.len())
	m.cond.Signal()
	return nil
}

// Start launches the workers. Calling Start more than once, or after
// Stop, has no effect.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return
	}
	m.started = true
	for i := 0; i < m.opts.Workers; i++ {
		id := i
		m.group.Go(func() error {
			m.work(id)
			return nil
		})
	}
	log.Infof("started %d workers", m.opts.Workers)
}

// Abort sets the global abort signal. In-flight transfers stop at their
// next progress check, and requests still queued fail as soon as they
// are executed. Abort does not stop the workers; call Stop for that.
func (m *Manager) Abort() {
	m.cancel()
	log.Info("manager aborted")
}

// Aborted reports whether Abort has been called.
func (m *Manager) Aborted() bool {
	return m.ctx.Err() != nil
}

// Stop refuses further requests, sends one shutdown sentinel per worker
// and waits for the workers to exit. The sentinels overtake any queued
// request, so in-flight requests finish but queued ones are not
// transferred: they are executed as aborted so that every added request
// ends up done. Stop is idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.started {
		for i := 0; i < m.opts.Workers; i++ {
			m.queue.push(request.NewQuit())
		}
		m.cond.Broadcast()
	}
	m.mu.Unlock()

	_ = m.group.Wait()

	ctx, cancel := context.WithCancel(m.ctx)
	cancel()
	for {
		m.mu.Lock()
		r := m.queue.pop()
		m.mu.Unlock()
		if r == nil {
			break
		}
		if !request.IsQuit(r) {
			log.Debugf("aborting leftover %s", r)
			m.finish(ctx, r)
		}
	}
	m.cancel()
	log.Info("manager stopped")
}

// Len returns the number of queued requests.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.len()
}

// Stats returns a snapshot of the Manager's counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Queued:   m.Len(),
		Executed: m.executed.Load(),
		Released: m.released.Load(),
		Workers:  m.opts.Workers,
	}
}

// next blocks until a request is queued and dequeues it.
func (m *Manager) next() request.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.queue.len() == 0 {
		m.cond.Wait()
	}
	return m.queue.pop()
}

func (m *Manager) work(id int) {
	log.Debugf("worker %d started", id)
	defer log.Debugf("worker %d stopped", id)
	for {
		r := m.next()
		if request.IsQuit(r) {
			return
		}
		if m.limiter != nil {
			if err := m.limiter.Wait(m.ctx); err != nil {
				log.Debugf("worker %d: rate limit wait: %v", id, err)
			}
		}
		m.finish(m.ctx, r)
	}
}

// finish executes r and releases it if the Manager owns it.
func (m *Manager) finish(ctx context.Context, r request.Request) {
	r.Execute(ctx)
	m.executed.Add(1)
	if !r.ManageMemory() {
		return
	}
	if rel, ok := r.(Releaser); ok {
		rel.Release()
	}
	m.released.Add(1)
}
