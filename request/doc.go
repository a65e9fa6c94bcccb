// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types shared by every kind of
asynchronous network request: the Request interface consumed by a
dispatcher, the Base type which drives a request through its lifecycle,
and the Progress cell a worker uses to publish how far an operation got.

A request moves through three states, Created, Executing and Done, and
never leaves Done. Execution is split into three ordered phases, before,
operation and after, supplied as Hooks:

	b := request.NewBase(request.PriorityDefault, false, request.Hooks{
		Operation: func(ctx context.Context) { ... },
		After:     func(ctx context.Context) { ... },
	})

Base.Execute runs the hooks in order and then marks the request done, so
no hook needs to set the completion flag itself and a request is always
marked done, whichever way the operation ends.

A request is executed by one worker goroutine, while any other goroutine
may poll Done, Cancelled and Progress. Those fields are atomic: once Done
reports true, everything the hooks wrote before returning is visible to
the polling goroutine.

Cancellation is cooperative. Cancel only sets a flag, and it is up to the
operation hook to check Cancelled at convenient points (for HTTP
transfers, on every progress tick) and stop early.

QuitRequest is a sentinel with the reserved maximal priority. A
dispatcher worker which dequeues it stops.
*/
package request
