// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package progress renders the state of running requests on a terminal.
//
// A Reporter never blocks on the requests it tracks. Each call to Frame
// reads their progress and completion flags once and writes one line per
// request, so a caller can drive it from a frame loop:
//
//	rep := progress.NewReporter(progress.Options{})
//	rep.Track("index", req)
//	_ = rep.Run(ctx, 100*time.Millisecond)
//
// Output looks like this:
//
//	[netreq] index: 45.2% | 1.13 MB
//	[netreq] index: done | 2.50 MB in 1.2s
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// A Tracked request exposes the non-blocking accessors a Reporter polls.
type Tracked interface {
	Done() bool
	Progress() float64
	Transferred() int64
}

// Options configures a Reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// Prefix starts every line.
	// Default: "[netreq]"
	Prefix string
}

type entry struct {
	label    string
	t        Tracked
	reported bool
}

// Reporter writes the progress of tracked requests.
type Reporter struct {
	opts      Options
	mu        sync.Mutex
	entries   []*entry
	startTime time.Time
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Prefix == "" {
		opts.Prefix = "[netreq]"
	}

	return &Reporter{
		opts:      opts,
		startTime: time.Now(),
	}
}

// Track adds t to the requests reported under label.
func (r *Reporter) Track(label string, t Tracked) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &entry{label: label, t: t})
}

// Frame writes one line for every tracked request which is still in
// flight, and a final line for every request which finished since the
// previous frame. It reports whether all tracked requests are done.
func (r *Reporter) Frame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := true
	for _, e := range r.entries {
		if e.reported {
			continue
		}
		if !e.t.Done() {
			all = false
			fmt.Fprintf(r.opts.Output, "%s %s: %s | %s\n",
				r.opts.Prefix, e.label, formatProgress(e.t.Progress()), formatBytes(e.t.Transferred()))
			continue
		}
		e.reported = true
		state := "done"
		if e.t.Progress() < 0 {
			state = "failed"
		}
		fmt.Fprintf(r.opts.Output, "%s %s: %s | %s in %s\n",
			r.opts.Prefix, e.label, state, formatBytes(e.t.Transferred()), formatDuration(time.Since(r.startTime)))
	}
	return all
}

// Run calls Frame every interval until all tracked requests are done or
// ctx is cancelled.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if r.Frame() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func formatProgress(f float64) string {
	if f < 0 {
		return "failed"
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a short human-readable string.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
