// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"path"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/gogama/netreq"
)

func runDownload(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	o.register(fs)
	bucketURL := fs.String("bucket", "", "Destination bucket URL, e.g. file:///tmp/out (required)")
	prefix := fs.String("prefix", "", "Key prefix for the stored objects")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: netreq download [options] URL...

Fetch each URL and store its body in the bucket under the prefix
followed by the last element of the URL path.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if *bucketURL == "" || fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: -bucket and at least one URL are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	s, err := newSession(&o, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	bucket, err := blob.OpenBucket(context.Background(), *bucketURL)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	var reqs []*netreq.DownloadRequest
	for _, u := range fs.Args() {
		key, err := objectKey(*prefix, u)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			s.manager.Stop()
			return ExitInvalidArgs
		}
		d := netreq.NewDownloadRequest(u, bucket, key)
		s.configure(d.HTTPRequest)
		if err := s.add(d, u, d); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			s.manager.Stop()
			return addExitCode(err)
		}
		reqs = append(reqs, d)
	}
	s.wait()

	code := ExitSuccess
	for _, d := range reqs {
		switch {
		case d.HTTPRequest.Err() != nil:
			fmt.Fprintf(stderr, "Error: %s: %v\n", d.URL, d.Err())
			code = ExitTransferFailed
		case d.Err() != nil:
			fmt.Fprintf(stderr, "Error: %s: %v\n", d.URL, d.Err())
			if code == ExitSuccess {
				code = ExitStorageError
			}
		default:
			fmt.Fprintf(stdout, "%s -> %s (%d bytes)\n", d.URL, d.Key, d.Written())
		}
	}
	return code
}

// objectKey derives the object key of rawURL: prefix joined with the
// last path element, or "index" when the path is empty.
func objectKey(prefix, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "index"
	}
	if prefix == "" {
		return name, nil
	}
	return path.Join(prefix, name), nil
}
