// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command netreq runs HTTP requests through a netreq Manager and reports
// their progress while they run.
package main

import (
	"fmt"
	"io"
	"os"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitNotAllowed     = 3
	ExitTransferFailed = 4
	ExitRejected       = 5
	ExitStorageError   = 6
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "get":
		return runFetch("get", cmdArgs, stdout, stderr)
	case "post":
		return runFetch("post", cmdArgs, stdout, stderr)
	case "xml":
		return runXML(cmdArgs, stdout, stderr)
	case "download":
		return runDownload(cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stderr)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return ExitInvalidArgs
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: netreq <command> [options] URL...

Commands:
  get       Fetch URLs and write their bodies to stdout
  post      Send form parameters to URLs and write the responses to stdout
  xml       Send a request whose XML response carries its own verdict
  download  Fetch URLs into a blob bucket (file://, mem://)

Only plain http:// URLs are accepted.
Run 'netreq <command> -h' for command-specific help.`)
}
