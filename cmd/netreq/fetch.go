// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/gogama/netreq"
	"github.com/gogama/netreq/transient"
)

func runFetch(name string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	o.register(fs)
	var params netreq.Params
	if name == "post" {
		fs.Var(paramsFlag{&params}, "d", "Form parameter key=value (repeatable)")
	}

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: netreq %s [options] URL...\n\nOptions:\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one URL is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if name == "post" && params.Len() == 0 {
		fmt.Fprintln(stderr, "Error: post needs at least one -d key=value")
		return ExitInvalidArgs
	}

	s, err := newSession(&o, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	var reqs []*netreq.HTTPRequest
	for _, u := range fs.Args() {
		r := netreq.NewHTTPRequestWithPriority(u, o.priority, false)
		for _, k := range params.Keys() {
			v, _ := params.Get(k)
			r.Params.Set(k, v)
		}
		s.configure(r)
		if err := s.add(r, u, r); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			s.manager.Stop()
			return addExitCode(err)
		}
		reqs = append(reqs, r)
	}
	s.wait()

	code := ExitSuccess
	for _, r := range reqs {
		if err := r.Err(); err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v (%s)\n", r.URL, err, transient.Categorize(err))
			code = ExitTransferFailed
			continue
		}
		if _, err := stdout.Write(r.Body()); err != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", err)
			return ExitGeneralError
		}
	}
	return code
}
