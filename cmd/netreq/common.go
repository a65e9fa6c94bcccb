// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gogama/netreq"
	"github.com/gogama/netreq/config"
	"github.com/gogama/netreq/internal/logging"
	"github.com/gogama/netreq/internal/progress"
	"github.com/gogama/netreq/request"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	priority   int
	frame      time.Duration
	quiet      bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level, overrides the config file")
	fs.IntVar(&o.priority, "priority", request.PriorityDefault, "Priority of the requests")
	fs.DurationVar(&o.frame, "frame", 100*time.Millisecond, "How often progress is polled")
	fs.BoolVar(&o.quiet, "quiet", false, "Do not report progress")
}

// paramsFlag collects repeated -d key=value flags.
type paramsFlag struct {
	p *netreq.Params
}

func (f paramsFlag) String() string {
	if f.p == nil {
		return ""
	}
	return f.p.Encode()
}

func (f paramsFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	f.p.Set(k, v)
	return nil
}

// session is one run of the manager, from loading the config to
// stopping the workers.
type session struct {
	cfg      *config.Config
	opts     *options
	manager  *netreq.Manager
	reporter *progress.Reporter
	ctx      context.Context
	cancel   context.CancelFunc
	stderr   io.Writer
}

func newSession(o *options, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	levelName := cfg.LogLevel
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level)

	out := stderr
	if o.quiet {
		out = io.Discard
	}
	s := &session{
		cfg:      cfg,
		opts:     o,
		manager:  netreq.NewManager(cfg.ManagerOptions()),
		reporter: progress.NewReporter(progress.Options{Output: out}),
		stderr:   stderr,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// configure applies the session's transfer settings to r.
func (s *session) configure(r *netreq.HTTPRequest) {
	r.Policy = s.cfg.TimeoutPolicy()
	r.Transport = s.cfg.Transport()
}

// add enqueues r and tracks it under its URL.
func (s *session) add(r request.Request, url string, t progress.Tracked) error {
	if err := s.manager.Add(r); err != nil {
		return fmt.Errorf("%s: %w", url, err)
	}
	s.reporter.Track(url, t)
	return nil
}

// wait runs the manager until every tracked request is done. An
// interrupt aborts all transfers.
func (s *session) wait() {
	defer s.cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(s.stderr, "\n[netreq] Received interrupt, aborting...")
			s.manager.Abort()
		case <-s.ctx.Done():
		}
	}()

	s.manager.Start()
	_ = s.reporter.Run(s.ctx, s.opts.frame)
	s.manager.Stop()
}

// addExitCode maps a Manager.Add error to an exit code.
func addExitCode(err error) int {
	if errors.Is(err, netreq.ErrNotAllowed) {
		return ExitNotAllowed
	}
	return ExitGeneralError
}
