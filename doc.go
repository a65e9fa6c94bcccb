// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package netreq runs prioritized, cancellable network requests on a pool
of background workers, while the caller polls their progress from its
own loop without ever blocking.

Create a Manager, start it, and add requests to it:

	m := netreq.NewManager(netreq.ManagerOptions{Workers: 4})
	m.Start()
	defer m.Stop()

	r := netreq.NewHTTPRequest("http://example.com/index.html")
	if err := m.Add(r); err != nil {
		...
	}

Then poll the request, for example once per frame:

	if r.Done() {
		if r.Err() != nil {
			... // r.Progress() is -1
		}
		use(r.Body())
	} else {
		draw(r.Progress())
	}

A request with non-empty Params is sent as a form-encoded POST:

	r.Params.Set("user", "bob")
	r.Params.Set("password", "hunter2")

An XMLRequest parses an XML response carrying its own verdict in a
success field and an info field:

	x := netreq.NewXMLRequest("http://example.com/login")
	...
	if x.Done() {
		if x.Success() {
			use(x.Result())
		}
		show(x.Info())
	}

A DownloadRequest stores the response body in a gocloud.dev/blob bucket.

Cancel a single request with Cancel, or every request of a Manager with
Abort. Cancellation is cooperative: the transfer stops at its next
progress check and the request then completes as failed.

For control over how transfers are timed out, set a custom timeout policy
using package timeout:

	r.Policy = timeout.Fixed(10*time.Second).WithLowSpeed(100, 30*time.Second)

To hook into the execution of a request, install a handler into the
appropriate handler chain:

	handlers := &netreq.HandlerGroup{}
	handlers.PushBack(netreq.AfterTransfer, netreq.HandlerFunc(
		func(_ netreq.Event, r *netreq.HTTPRequest) {
			log.Printf("%s: status %d", r.URL, r.StatusCode())
		}),
	)
	r.Handlers = handlers
*/
package netreq
