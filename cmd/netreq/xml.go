// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/gogama/netreq"
)

func runXML(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xml", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	o.register(fs)
	var params netreq.Params
	fs.Var(paramsFlag{&params}, "d", "Form parameter key=value (repeatable)")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: netreq xml [options] URL

Send a request whose XML response has a success field ("yes" or not)
and an info field. The info message is printed to stdout and the exit
code tells whether the server reported success.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one URL is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	s, err := newSession(&o, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	u := fs.Arg(0)
	x := netreq.NewXMLRequestWithPriority(u, o.priority, false)
	x.Params = params
	s.configure(x.HTTPRequest)
	if err := s.add(x, u, x); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		s.manager.Stop()
		return addExitCode(err)
	}
	s.wait()

	fmt.Fprintln(stdout, x.Info())
	switch {
	case x.Err() != nil:
		return ExitTransferFailed
	case !x.Success():
		return ExitRejected
	default:
		return ExitSuccess
	}
}
