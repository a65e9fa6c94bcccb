// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/gogama/netreq/request"
)

// A DownloadRequest is an HTTPRequest which stores the response body in
// a blob bucket under Key once the transfer succeeds. Any gocloud bucket
// works: a local directory (file://), memory (mem://) or a cloud store.
//
// The body is dropped from memory once written, so Body is empty after a
// successful download.
type DownloadRequest struct {
	*HTTPRequest

	// Bucket receives the downloaded object. It must not be nil.
	Bucket *blob.Bucket
	// Key is the object key to write.
	Key string

	written  int64
	writeErr error
}

// NewDownloadRequest returns a caller-owned request downloading url into
// bucket under key.
func NewDownloadRequest(url string, bucket *blob.Bucket, key string) *DownloadRequest {
	d := &DownloadRequest{
		HTTPRequest: NewHTTPRequest(url),
		Bucket:      bucket,
		Key:         key,
	}
	d.SetHooks(request.Hooks{
		Before:    d.beforeOperation,
		Operation: d.operation,
		After:     d.afterOperation,
	})
	return d
}

// Success reports whether the transfer succeeded and the object was
// written.
func (d *DownloadRequest) Success() bool {
	return d.HTTPRequest.Err() == nil && d.writeErr == nil
}

// Err returns the transfer error, or the bucket write error if the
// transfer succeeded but storing the object failed.
func (d *DownloadRequest) Err() error {
	if err := d.HTTPRequest.Err(); err != nil {
		return err
	}

	return d.writeErr
}

// Written returns the number of bytes stored in the bucket.
func (d *DownloadRequest) Written() int64 {
	return d.written
}

func (d *DownloadRequest) operation(ctx context.Context) {
	body := d.download(ctx)
	if d.HTTPRequest.Err() == nil {
		d.store(ctx, body)
	}
	d.settle(d.Err() == nil)
}

// store writes body to the bucket. Progress stays in flight until the
// write is confirmed.
func (d *DownloadRequest) store(ctx context.Context, body []byte) {
	var opts *blob.WriterOptions
	if ct := d.header.Get("Content-Type"); ct != "" {
		opts = &blob.WriterOptions{ContentType: ct}
	}
	if err := d.Bucket.WriteAll(ctx, d.Key, body, opts); err != nil {
		d.writeErr = fmt.Errorf("write %q: %w", d.Key, err)
		log.Errorf("%s: storing %q failed (%s): %v", d, d.Key, gcerrors.Code(err), err)
		return
	}
	d.written = int64(len(body))
	log.Infof("%s: stored %d bytes as %q", d, d.written, d.Key)
}
